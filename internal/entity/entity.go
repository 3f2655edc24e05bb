// Package entity defines the typed records shared across the consistency
// registry: reference entities loaded from upstream tables, the session
// mapping produced by synthesis, and the derived cross-reference summary.
package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DateLayout is the date format used by all upstream and downstream tables.
const DateLayout = "2006-01-02"

// Sales channels recognized across the demo datasets.
const (
	ChannelOnline         = "online"
	ChannelMobileApp      = "mobile_app"
	ChannelSocialCommerce = "social_commerce"
	ChannelStore          = "store"
)

// ConvertibleChannels lists the channels whose orders terminate a browsing
// session. This is the single definition used by both session synthesis and
// the cross-reference summary.
var ConvertibleChannels = map[string]bool{
	ChannelOnline:         true,
	ChannelMobileApp:      true,
	ChannelSocialCommerce: true,
}

// IsConvertibleChannel reports whether orders on the given channel are
// modeled as the outcome of a webshop session.
func IsConvertibleChannel(channel string) bool {
	return ConvertibleChannels[channel]
}

// Conversion types for session mappings.
const (
	ConversionPurchase = "purchase"
	ConversionBrowse   = "browse"
)

// DefaultCountryCode is used when a customer record carries no country.
const DefaultCountryCode = "NL"

// Customer is an upstream customer record. Read-only after load.
type Customer struct {
	ID                string `json:"customer_id"`
	CountryCode       string `json:"country_code"`
	ChannelPreference string `json:"channel_preference,omitempty"`
}

// Product is an upstream product record. Read-only after load.
type Product struct {
	ID       string          `json:"product_id"`
	Category string          `json:"category,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// Order is an upstream order header. Read-only after load.
type Order struct {
	ID          string          `json:"order_id"`
	CustomerID  string          `json:"customer_id"`
	OrderDate   time.Time       `json:"order_date"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	Channel     string          `json:"channel"`
	StoreID     string          `json:"store_id,omitempty"`
	CampaignID  string          `json:"campaign_id,omitempty"`
	CountryCode string          `json:"country_code,omitempty"`
}

// Campaign is an upstream marketing campaign record. Read-only after load.
type Campaign struct {
	ID        string    `json:"campaign_id"`
	Name      string    `json:"name,omitempty"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Channel   string    `json:"channel,omitempty"`
}

// Store is an upstream physical store record. Read-only after load.
type Store struct {
	ID          string `json:"store_id"`
	CountryCode string `json:"country_code,omitempty"`
	City        string `json:"city,omitempty"`
}

// SessionMapping links a fabricated webshop session to the order it produced,
// if any. OrderID is empty for non-converting (browse) sessions and
// CustomerID is empty for anonymous guest sessions.
type SessionMapping struct {
	SessionID      string          `json:"session_id"`
	OrderID        string          `json:"order_id"`
	CustomerID     string          `json:"customer_id"`
	CountryCode    string          `json:"country_code"`
	OrderValue     decimal.Decimal `json:"order_value"`
	ConversionType string          `json:"conversion_type"`
	SessionDate    time.Time       `json:"session_date"`
	Device         string          `json:"device,omitempty"`
	UserAgent      string          `json:"user_agent,omitempty"`
}

// Converted reports whether the session terminated in a purchase.
func (s SessionMapping) Converted() bool {
	return s.ConversionType == ConversionPurchase
}

// TargetMetrics holds the process-wide generation targets. Supplied once at
// registry construction and read-only afterwards.
type TargetMetrics struct {
	TotalOrders           int             `json:"total_orders"`
	TotalRevenue          decimal.Decimal `json:"total_revenue"`
	OnlineConversionRate  float64         `json:"online_conversion_rate"`
	OnlineOrderPercentage float64         `json:"online_order_percentage"`
	TotalWebshopSessions  int             `json:"total_webshop_sessions"`
}

// TimeConfig is the unified date window all generators must respect so that
// dates stay comparable across systems.
type TimeConfig struct {
	UnifiedStartDate time.Time `json:"unified_start_date"`
	UnifiedEndDate   time.Time `json:"unified_end_date"`
	CurrentDate      time.Time `json:"current_date"`
}

// CrossRefSummary is the derived cross-system summary, recomputed from the
// order and session sets at save time. Immutable snapshot.
type CrossRefSummary struct {
	OnlineOrdersCount       int             `json:"online_orders_count"`
	TotalOrdersCount        int             `json:"total_orders_count"`
	TotalRevenue            decimal.Decimal `json:"total_revenue"`
	ConvertingSessionsCount int             `json:"converting_sessions_count"`
	TotalSessionsCount      int             `json:"total_sessions_count"`
}

// ParseDate parses a date in the shared table layout.
func ParseDate(value string) (time.Time, error) {
	return time.Parse(DateLayout, value)
}

// FormatDate renders a date in the shared table layout.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
