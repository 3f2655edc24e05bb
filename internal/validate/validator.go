// Package validate re-derives conversion and revenue figures from the
// persisted registry and independently generated downstream tables, and
// reports agreement per check. Inconsistencies are structured results, never
// errors: all checks run even when an earlier one fails, so one pass gives
// the full diagnostic picture.
package validate

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/registry"
)

// Check names, in execution order.
const (
	CheckRevenueReconciliation = "revenue_reconciliation"
	CheckCustomerConsistency   = "customer_consistency"
	CheckOrderReferences       = "order_references"
	CheckTimePeriodConsistency = "time_period_consistency"
	CheckConversionRateRealism = "conversion_rate_realism"
)

// Status is the outcome of a single check.
type Status string

// Check outcomes.
const (
	StatusPass Status = "PASS"
	StatusFail Status = "FAIL"
	StatusSkip Status = "SKIP"
)

// Result is the outcome of one consistency check. Results are audit
// artifacts produced fresh each run, never authoritative state.
type Result struct {
	Name        string `json:"test_name"`
	Description string `json:"description"`
	Status      Status `json:"status"`
	Expected    string `json:"expected"`
	Actual      string `json:"actual"`
}

// Results holds all check outcomes from one validation run.
type Results struct {
	Results      []Result `json:"results"`
	PassedCount  int      `json:"passed_count"`
	FailedCount  int      `json:"failed_count"`
	SkippedCount int      `json:"skipped_count"`
	TotalCount   int      `json:"total_count"`
	AllPassed    bool     `json:"all_passed"`
}

// Failed returns only the failed results.
func (r *Results) Failed() []Result {
	failed := make([]Result, 0, r.FailedCount)
	for _, result := range r.Results {
		if result.Status == StatusFail {
			failed = append(failed, result)
		}
	}
	return failed
}

// Summary returns a one-line human-readable summary.
func (r *Results) Summary() string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Consistency checks: %d/%d passed", r.PassedCount, r.TotalCount))
	if r.FailedCount > 0 {
		sb.WriteString(fmt.Sprintf(" (%d FAILED)", r.FailedCount))
	}
	if r.SkippedCount > 0 {
		sb.WriteString(fmt.Sprintf(" (%d skipped)", r.SkippedCount))
	}
	return sb.String()
}

// Inputs are the datasets one validation run compares.
type Inputs struct {
	// Registry is the persisted registry from the build run.
	Registry *registry.Registry

	// GLLines are the finance general-ledger lines.
	GLLines []GLLine

	// WebshopSessions are the downstream webshop sessions; nil means the
	// webshop dataset is unavailable, which skips rather than fails the
	// checks that need it.
	WebshopSessions []WebshopSession
}

// Validator runs the fixed sequence of consistency checks.
type Validator struct {
	cfg ChecksConfig
	log *zap.Logger
}

// NewValidator creates a validator with the given thresholds.
func NewValidator(cfg ChecksConfig, log *zap.Logger) *Validator {
	if log == nil {
		log = zap.NewNop()
	}
	cfg.ApplyDefaults()
	return &Validator{cfg: cfg, log: log}
}

// Validate runs every check and returns the batch of results. It never
// aborts early.
func (v *Validator) Validate(in Inputs) *Results {
	results := &Results{}

	checks := []func(Inputs) Result{
		v.checkRevenueReconciliation,
		v.checkCustomerConsistency,
		v.checkOrderReferences,
		v.checkTimePeriodConsistency,
		v.checkConversionRateRealism,
	}
	for _, check := range checks {
		result := check(in)
		v.log.Info("consistency check finished",
			zap.String("check", result.Name),
			zap.String("status", string(result.Status)),
			zap.String("expected", result.Expected),
			zap.String("actual", result.Actual))
		results.Results = append(results.Results, result)
	}

	results.TotalCount = len(results.Results)
	for _, r := range results.Results {
		switch r.Status {
		case StatusPass:
			results.PassedCount++
		case StatusFail:
			results.FailedCount++
		case StatusSkip:
			results.SkippedCount++
		}
	}
	results.AllPassed = results.FailedCount == 0
	return results
}

// checkRevenueReconciliation compares the operational revenue total against
// the credit postings on the revenue account. Either the absolute or the
// relative tolerance passing is enough.
func (v *Validator) checkRevenueReconciliation(in Inputs) Result {
	operational := in.Registry.CrossRefs.TotalRevenue

	finance := decimal.Zero
	for _, line := range in.GLLines {
		if line.AccountID == v.cfg.RevenueAccount {
			finance = finance.Add(line.Credit)
		}
	}

	variance := operational.Sub(finance).Abs()
	absTolerance := decimal.NewFromFloat(v.cfg.AbsoluteToleranceEUR)

	withinAbs := variance.LessThan(absTolerance)
	withinRel := false
	if operational.IsPositive() {
		ratio := variance.Div(operational)
		withinRel = ratio.LessThan(decimal.NewFromFloat(v.cfg.RelativeTolerance))
	}

	status := StatusFail
	if withinAbs || withinRel {
		status = StatusPass
	}

	return Result{
		Name:        CheckRevenueReconciliation,
		Description: "Operational order revenue matches finance revenue-account credits",
		Status:      status,
		Expected: fmt.Sprintf("variance < €%.2f or < %.3f%% of operational total",
			v.cfg.AbsoluteToleranceEUR, v.cfg.RelativeTolerance*100),
		Actual: fmt.Sprintf("operational €%s, finance €%s, variance €%s",
			operational.StringFixed(2), finance.StringFixed(2), variance.StringFixed(2)),
	}
}

// checkCustomerConsistency verifies that every non-empty customer id
// referenced by GL lines or webshop sessions exists in the registry's
// customer set. Anonymous references are not orphans.
func (v *Validator) checkCustomerConsistency(in Inputs) Result {
	known := make(map[string]bool, len(in.Registry.CustomerIDs))
	for _, id := range in.Registry.CustomerIDs {
		known[id] = true
	}

	orphans := make(map[string]bool)
	for _, line := range in.GLLines {
		if line.CustomerID != "" && !known[line.CustomerID] {
			orphans[line.CustomerID] = true
		}
	}
	for _, s := range in.WebshopSessions {
		if s.CustomerID != "" && !known[s.CustomerID] {
			orphans[s.CustomerID] = true
		}
	}

	status := StatusPass
	if len(orphans) > 0 {
		status = StatusFail
	}
	return Result{
		Name:        CheckCustomerConsistency,
		Description: "Customer ids referenced by finance and webshop data exist in the customer set",
		Status:      status,
		Expected:    "0 orphaned customer references",
		Actual:      fmt.Sprintf("%d orphaned customer references", len(orphans)),
	}
}

// checkOrderReferences verifies both directions: every order reference in
// the GL resolves to a known order, and every order has at least one GL
// reference.
func (v *Validator) checkOrderReferences(in Inputs) Result {
	known := make(map[string]bool, len(in.Registry.OrderIDs))
	for _, id := range in.Registry.OrderIDs {
		known[id] = true
	}

	referenced := make(map[string]bool)
	orphanedRefs := 0
	for _, line := range in.GLLines {
		if !strings.HasPrefix(line.Reference, v.cfg.OrderRefPrefix) {
			continue
		}
		if known[line.Reference] {
			referenced[line.Reference] = true
		} else {
			orphanedRefs++
		}
	}

	unreferencedOrders := 0
	for _, id := range in.Registry.OrderIDs {
		if !referenced[id] {
			unreferencedOrders++
		}
	}

	status := StatusPass
	if orphanedRefs > 0 || unreferencedOrders > 0 {
		status = StatusFail
	}
	return Result{
		Name:        CheckOrderReferences,
		Description: "GL order references resolve and every order is posted to the ledger",
		Status:      status,
		Expected:    "0 orphaned references and 0 unposted orders",
		Actual: fmt.Sprintf("%d orphaned GL references, %d orders without GL reference",
			orphanedRefs, unreferencedOrders),
	}
}

// checkTimePeriodConsistency requires the [min,max] date range observed in
// operational sessions, finance journal dates and webshop session dates to
// be identical. Missing webshop data substitutes the operational range so
// optional data can never fail the check on its own.
func (v *Validator) checkTimePeriodConsistency(in Inputs) Result {
	var operationalDates, journalDates, webshopDates []time.Time
	for _, s := range in.Registry.Sessions {
		if s.Converted() {
			operationalDates = append(operationalDates, s.SessionDate)
		}
	}
	for _, line := range in.GLLines {
		journalDates = append(journalDates, line.JournalDate)
	}
	for _, s := range in.WebshopSessions {
		webshopDates = append(webshopDates, s.SessionDate)
	}

	if len(operationalDates) == 0 || len(journalDates) == 0 {
		return Result{
			Name:        CheckTimePeriodConsistency,
			Description: "Operational, finance and webshop date ranges are identical",
			Status:      StatusSkip,
			Expected:    "identical [min,max] date ranges",
			Actual:      "insufficient data to compare date ranges",
		}
	}

	opRange := dateRange(operationalDates)
	finRange := dateRange(journalDates)
	webRange := opRange
	substituted := len(webshopDates) == 0
	if !substituted {
		webRange = dateRange(webshopDates)
	}

	status := StatusPass
	if opRange != finRange || opRange != webRange {
		status = StatusFail
	}

	actual := fmt.Sprintf("operational %s, finance %s, webshop %s", opRange, finRange, webRange)
	if substituted {
		actual += " (substituted)"
	}
	return Result{
		Name:        CheckTimePeriodConsistency,
		Description: "Operational, finance and webshop date ranges are identical",
		Status:      status,
		Expected:    "identical [min,max] date ranges",
		Actual:      actual,
	}
}

// checkConversionRateRealism recomputes the conversion rate from webshop
// session data and requires it inside the realistic band.
func (v *Validator) checkConversionRateRealism(in Inputs) Result {
	expected := fmt.Sprintf("conversion rate within [%.1f%%, %.1f%%]",
		v.cfg.ConversionRateMinPct, v.cfg.ConversionRateMaxPct)

	if len(in.WebshopSessions) == 0 {
		return Result{
			Name:        CheckConversionRateRealism,
			Description: "Webshop conversion rate falls in the realistic fashion e-commerce band",
			Status:      StatusSkip,
			Expected:    expected,
			Actual:      "webshop session data unavailable",
		}
	}

	converted := 0
	for _, s := range in.WebshopSessions {
		if s.Converted {
			converted++
		}
	}
	rate := float64(converted) / float64(len(in.WebshopSessions)) * 100

	status := StatusFail
	if rate >= v.cfg.ConversionRateMinPct && rate <= v.cfg.ConversionRateMaxPct {
		status = StatusPass
	}
	return Result{
		Name:        CheckConversionRateRealism,
		Description: "Webshop conversion rate falls in the realistic fashion e-commerce band",
		Status:      status,
		Expected:    expected,
		Actual: fmt.Sprintf("%.2f%% (%d of %d sessions converted)",
			rate, converted, len(in.WebshopSessions)),
	}
}

// dateRange renders the [min,max] of the given dates in table layout.
func dateRange(dates []time.Time) string {
	sorted := make([]time.Time, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })
	return fmt.Sprintf("[%s, %s]",
		entity.FormatDate(sorted[0]), entity.FormatDate(sorted[len(sorted)-1]))
}
