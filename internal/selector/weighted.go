// Package selector provides weighted random selection for session attribute
// distributions (country, device).
package selector

import (
	"errors"
	"math/rand"
)

// Errors returned by the selector package.
var (
	// ErrNoEntries is returned when there are no entries to select from.
	ErrNoEntries = errors.New("selector: no entries available")
	// ErrInvalidWeight is returned when an entry has a non-positive weight.
	ErrInvalidWeight = errors.New("selector: invalid weight")
)

// Entry is a candidate value with its selection weight.
type Entry struct {
	Value  string
	Weight int
}

// weightedEntry is an entry in the selection pool with its cumulative weight.
type weightedEntry struct {
	value            string
	cumulativeWeight int
}

// Weighted selects values according to configured integer weights. It is
// immutable after construction; randomness comes from the rand.Rand passed
// to Pick so that callers control seeding.
type Weighted struct {
	entries     []weightedEntry
	totalWeight int
}

// NewWeighted builds a weighted selector from the given entries.
func NewWeighted(entries []Entry) (*Weighted, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}

	w := &Weighted{entries: make([]weightedEntry, 0, len(entries))}
	for _, e := range entries {
		if e.Weight <= 0 {
			return nil, ErrInvalidWeight
		}
		w.totalWeight += e.Weight
		w.entries = append(w.entries, weightedEntry{
			value:            e.Value,
			cumulativeWeight: w.totalWeight,
		})
	}
	return w, nil
}

// Pick selects one value using the given random source.
func (w *Weighted) Pick(r *rand.Rand) string {
	roll := r.Intn(w.totalWeight)
	for _, e := range w.entries {
		if roll < e.cumulativeWeight {
			return e.value
		}
	}
	// Unreachable: the last cumulative weight equals totalWeight.
	return w.entries[len(w.entries)-1].value
}

// TotalWeight returns the sum of all entry weights.
func (w *Weighted) TotalWeight() int {
	return w.totalWeight
}

// Values returns the candidate values in configuration order.
func (w *Weighted) Values() []string {
	values := make([]string, len(w.entries))
	for i, e := range w.entries {
		values[i] = e.value
	}
	return values
}
