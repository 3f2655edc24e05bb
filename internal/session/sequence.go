package session

import (
	"fmt"
	"sync/atomic"
	"time"
)

// sessionIDPadding is the zero-padded width of the sequence part.
const sessionIDPadding = 6

// IDSequence assigns session ids from a single monotonically increasing
// counter shared by converting and non-converting generation. The id embeds
// the year of the session's own date for downstream consumers that route by
// prefix; the counter itself is date-independent, so ids are unique even
// when dates arrive unsorted.
type IDSequence struct {
	current int64
}

// NewIDSequence creates a sequence starting at 1.
func NewIDSequence() *IDSequence {
	return &IDSequence{}
}

// Next returns the next session id for a session on the given date,
// formatted as SESS_<year>_<6-digit-seq>.
func (s *IDSequence) Next(date time.Time) string {
	next := atomic.AddInt64(&s.current, 1)
	return fmt.Sprintf("SESS_%d_%0*d", date.Year(), sessionIDPadding, next)
}

// Current returns the last assigned sequence number.
func (s *IDSequence) Current() int64 {
	return atomic.LoadInt64(&s.current)
}
