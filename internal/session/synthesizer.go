// Package session fabricates the session-mapping set that links webshop
// browsing sessions to orders. Every convertible-channel order gets exactly
// one converting session; the non-converting volume is derived from the
// target conversion rate, so the final rate holds by construction rather
// than by resampling.
package session

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/config"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/refload"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/selector"
)

// customerLinkProbability is the chance a browse session is linked to a
// known customer instead of being an anonymous guest session.
const customerLinkProbability = 0.7

// countryWeights is the fixed distribution of non-converting sessions over
// the supported markets.
var countryWeights = []selector.Entry{
	{Value: "NL", Weight: 20},
	{Value: "DE", Weight: 35},
	{Value: "FR", Weight: 25},
	{Value: "BE", Weight: 15},
	{Value: "LU", Weight: 5},
}

// deviceWeights is the device mix for fabricated sessions.
var deviceWeights = []selector.Entry{
	{Value: "mobile", Weight: 55},
	{Value: "desktop", Weight: 35},
	{Value: "tablet", Weight: 10},
}

// Synthesizer produces the session-mapping collection for one registry
// build. All randomness flows from the seed given at construction, so the
// same seed over the same reference data reproduces the full set.
type Synthesizer struct {
	targets   entity.TargetMetrics
	window    entity.TimeConfig
	rng       *rand.Rand
	faker     *gofakeit.Faker
	countries *selector.Weighted
	devices   *selector.Weighted
	seq       *IDSequence
	log       *zap.Logger
}

// NewSynthesizer creates a synthesizer. The conversion-rate target must be
// a positive fraction and the date window must not be inverted; either
// violation aborts before any session is created.
func NewSynthesizer(targets entity.TargetMetrics, window entity.TimeConfig, seed int64, log *zap.Logger) (*Synthesizer, error) {
	if targets.OnlineConversionRate <= 0 {
		return nil, fmt.Errorf("%w: online conversion rate must be positive, got %v",
			config.ErrInvalidConfiguration, targets.OnlineConversionRate)
	}
	if window.UnifiedEndDate.Before(window.UnifiedStartDate) {
		return nil, fmt.Errorf("%w: unified date window is inverted", config.ErrInvalidConfiguration)
	}
	if log == nil {
		log = zap.NewNop()
	}

	countries, err := selector.NewWeighted(countryWeights)
	if err != nil {
		return nil, err
	}
	devices, err := selector.NewWeighted(deviceWeights)
	if err != nil {
		return nil, err
	}

	return &Synthesizer{
		targets:   targets,
		window:    window,
		rng:       rand.New(rand.NewSource(seed)),
		faker:     gofakeit.New(uint64(seed)),
		countries: countries,
		devices:   devices,
		seq:       NewIDSequence(),
		log:       log,
	}, nil
}

// Synthesize builds the full session-mapping collection from the loaded
// reference data: one purchase session per convertible-channel order, plus
// exactly as many browse sessions as the target conversion rate requires.
func (s *Synthesizer) Synthesize(refs *refload.ReferenceData) ([]entity.SessionMapping, error) {
	convertible := convertibleOrders(refs.Orders)
	if len(convertible) == 0 {
		s.log.Warn("no convertible-channel orders found; session set will be empty")
		return nil, nil
	}

	converting := s.synthesizeConverting(convertible, refs.Customers)

	total := int(math.Round(float64(len(convertible)) / s.targets.OnlineConversionRate))
	nonConverting := total - len(convertible)
	if nonConverting < 0 {
		nonConverting = 0
	}

	s.log.Info("session volumes derived from conversion target",
		zap.Int("converting", len(convertible)),
		zap.Int("non_converting", nonConverting),
		zap.Int("total", total),
		zap.Float64("target_rate", s.targets.OnlineConversionRate))

	sessions := append(converting, s.synthesizeBrowsing(nonConverting, refs.Customers)...)
	return sessions, nil
}

// synthesizeConverting fabricates exactly one purchase session per order.
// Orders are visited in id order so a fixed seed yields a fixed output.
func (s *Synthesizer) synthesizeConverting(orders []entity.Order, customers map[string]entity.Customer) []entity.SessionMapping {
	sessions := make([]entity.SessionMapping, 0, len(orders))
	for _, order := range orders {
		country := entity.DefaultCountryCode
		if customer, ok := customers[order.CustomerID]; ok && customer.CountryCode != "" {
			country = customer.CountryCode
		}

		sessions = append(sessions, entity.SessionMapping{
			SessionID:      s.seq.Next(order.OrderDate),
			OrderID:        order.ID,
			CustomerID:     order.CustomerID,
			CountryCode:    country,
			OrderValue:     order.TotalAmount,
			ConversionType: entity.ConversionPurchase,
			SessionDate:    order.OrderDate,
			Device:         s.devices.Pick(s.rng),
			UserAgent:      s.faker.UserAgent(),
		})
	}
	return sessions
}

// synthesizeBrowsing fabricates the requested number of non-converting
// sessions with bounded random attributes.
func (s *Synthesizer) synthesizeBrowsing(count int, customers map[string]entity.Customer) []entity.SessionMapping {
	customerIDs := sortedCustomerIDs(customers)

	sessions := make([]entity.SessionMapping, 0, count)
	for i := 0; i < count; i++ {
		date := s.randomDate()

		customerID := ""
		if len(customerIDs) > 0 && s.rng.Float64() < customerLinkProbability {
			customerID = customerIDs[s.rng.Intn(len(customerIDs))]
		}

		sessions = append(sessions, entity.SessionMapping{
			SessionID:      s.seq.Next(date),
			OrderID:        "",
			CustomerID:     customerID,
			CountryCode:    s.countries.Pick(s.rng),
			OrderValue:     decimal.Zero,
			ConversionType: entity.ConversionBrowse,
			SessionDate:    date,
			Device:         s.devices.Pick(s.rng),
			UserAgent:      s.faker.UserAgent(),
		})
	}
	return sessions
}

// randomDate picks a uniformly random day inside the unified window.
func (s *Synthesizer) randomDate() time.Time {
	days := int(s.window.UnifiedEndDate.Sub(s.window.UnifiedStartDate).Hours()/24) + 1
	return s.window.UnifiedStartDate.AddDate(0, 0, s.rng.Intn(days))
}

// convertibleOrders filters the loaded orders to those on convertible
// channels, sorted by id for deterministic iteration.
func convertibleOrders(orders map[string]entity.Order) []entity.Order {
	filtered := make([]entity.Order, 0, len(orders))
	for _, order := range orders {
		if entity.IsConvertibleChannel(order.Channel) {
			filtered = append(filtered, order)
		}
	}
	sort.Slice(filtered, func(i, j int) bool { return filtered[i].ID < filtered[j].ID })
	return filtered
}

// sortedCustomerIDs returns the customer ids in stable order for seeded
// selection.
func sortedCustomerIDs(customers map[string]entity.Customer) []string {
	ids := make([]string, 0, len(customers))
	for id := range customers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
