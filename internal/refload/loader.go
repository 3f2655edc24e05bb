// Package refload loads already-generated entity tables from CSV into
// in-memory mappings keyed by natural id. The loaded data is read-only input
// for session synthesis; nothing here writes.
package refload

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
)

// ErrMissingReferenceData is returned when a required reference dataset
// (customers or orders) is absent. Products, campaigns and stores may be
// missing; downstream features degrade instead of aborting.
var ErrMissingReferenceData = errors.New("refload: required reference data missing")

// Source file names inside the reference directory.
const (
	customersFile = "customers.csv"
	productsFile  = "products.csv"
	ordersFile    = "orders.csv"
	campaignsFile = "campaigns.csv"
	storesFile    = "stores.csv"
)

// orderAmountColumns are the accepted order-total column names, tried in
// order. Upstream exports differ between EUR-normalized and local amounts.
var orderAmountColumns = []string{"total_amount_eur", "total_amount_local", "total_amount"}

// ReferenceData holds the loaded entity tables keyed by natural id.
type ReferenceData struct {
	Customers map[string]entity.Customer
	Products  map[string]entity.Product
	Orders    map[string]entity.Order
	Campaigns map[string]entity.Campaign
	Stores    map[string]entity.Store
}

// Loader reads reference tables from a directory of CSV files.
type Loader struct {
	dir string
	log *zap.Logger
}

// NewLoader creates a loader for the given reference directory.
func NewLoader(dir string, log *zap.Logger) *Loader {
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{dir: dir, log: log}
}

// Load reads all reference tables. Customers and orders are required;
// the remaining tables load as empty when their files are absent.
func (l *Loader) Load() (*ReferenceData, error) {
	refs := &ReferenceData{
		Customers: make(map[string]entity.Customer),
		Products:  make(map[string]entity.Product),
		Orders:    make(map[string]entity.Order),
		Campaigns: make(map[string]entity.Campaign),
		Stores:    make(map[string]entity.Store),
	}

	if err := l.loadCustomers(refs); err != nil {
		return nil, err
	}
	if err := l.loadOrders(refs); err != nil {
		return nil, err
	}
	l.loadProducts(refs)
	l.loadCampaigns(refs)
	l.loadStores(refs)

	l.log.Info("reference data loaded",
		zap.Int("customers", len(refs.Customers)),
		zap.Int("products", len(refs.Products)),
		zap.Int("orders", len(refs.Orders)),
		zap.Int("campaigns", len(refs.Campaigns)),
		zap.Int("stores", len(refs.Stores)))

	return refs, nil
}

func (l *Loader) loadCustomers(refs *ReferenceData) error {
	rows, err := l.readTable(customersFile)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMissingReferenceData, customersFile, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrMissingReferenceData, customersFile)
	}

	for _, row := range rows {
		id := row["customer_id"]
		if id == "" {
			continue
		}
		refs.Customers[id] = entity.Customer{
			ID:                id,
			CountryCode:       row["country_code"],
			ChannelPreference: row["channel_preference"],
		}
	}
	return nil
}

func (l *Loader) loadOrders(refs *ReferenceData) error {
	rows, err := l.readTable(ordersFile)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMissingReferenceData, ordersFile, err)
	}
	if len(rows) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrMissingReferenceData, ordersFile)
	}

	skipped := 0
	duplicates := 0
	for _, row := range rows {
		id := row["order_id"]
		if id == "" {
			skipped++
			continue
		}
		// Upstream sources may repeat header rows per line item; first wins.
		if _, exists := refs.Orders[id]; exists {
			duplicates++
			continue
		}

		orderDate, err := entity.ParseDate(row["order_date"])
		if err != nil {
			l.log.Warn("skipping order with unparseable date",
				zap.String("order_id", id),
				zap.String("order_date", row["order_date"]))
			skipped++
			continue
		}

		refs.Orders[id] = entity.Order{
			ID:          id,
			CustomerID:  row["customer_id"],
			OrderDate:   orderDate,
			TotalAmount: parseAmount(row),
			Channel:     row["channel"],
			StoreID:     row["store_id"],
			CampaignID:  row["campaign_id"],
			CountryCode: row["country_code"],
		}
	}

	if skipped > 0 || duplicates > 0 {
		l.log.Warn("order rows dropped during load",
			zap.Int("skipped", skipped),
			zap.Int("duplicates", duplicates))
	}
	return nil
}

func (l *Loader) loadProducts(refs *ReferenceData) {
	rows, err := l.readTable(productsFile)
	if err != nil {
		l.log.Warn("products table unavailable, continuing without it", zap.Error(err))
		return
	}
	for _, row := range rows {
		id := row["product_id"]
		if id == "" {
			continue
		}
		price, err := decimal.NewFromString(row["price"])
		if err != nil {
			price = decimal.Zero
		}
		refs.Products[id] = entity.Product{
			ID:       id,
			Category: row["category"],
			Price:    price,
		}
	}
}

func (l *Loader) loadCampaigns(refs *ReferenceData) {
	rows, err := l.readTable(campaignsFile)
	if err != nil {
		l.log.Warn("campaigns table unavailable, continuing without it", zap.Error(err))
		return
	}
	for _, row := range rows {
		id := row["campaign_id"]
		if id == "" {
			continue
		}
		start, _ := entity.ParseDate(row["start_date"])
		end, _ := entity.ParseDate(row["end_date"])
		refs.Campaigns[id] = entity.Campaign{
			ID:        id,
			Name:      row["name"],
			StartDate: start,
			EndDate:   end,
			Channel:   row["channel"],
		}
	}
}

func (l *Loader) loadStores(refs *ReferenceData) {
	rows, err := l.readTable(storesFile)
	if err != nil {
		l.log.Warn("stores table unavailable, continuing without it", zap.Error(err))
		return
	}
	for _, row := range rows {
		id := row["store_id"]
		if id == "" {
			continue
		}
		refs.Stores[id] = entity.Store{
			ID:          id,
			CountryCode: row["country_code"],
			City:        row["city"],
		}
	}
}

// parseAmount resolves the order total, tolerating the known column name
// variants and falling back to zero when none is present or parseable.
func parseAmount(row map[string]string) decimal.Decimal {
	for _, col := range orderAmountColumns {
		if raw, ok := row[col]; ok && raw != "" {
			if amount, err := decimal.NewFromString(raw); err == nil {
				return amount
			}
		}
	}
	return decimal.Zero
}

// readTable reads a CSV file into header-keyed rows. Header names are
// lowercased so lookups are case-insensitive.
func (l *Loader) readTable(name string) ([]map[string]string, error) {
	file, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading header of %s: %w", name, err)
	}
	for i, col := range header {
		header[i] = strings.ToLower(strings.TrimSpace(col))
	}

	var rows []map[string]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			l.log.Warn("skipping malformed row", zap.String("table", name), zap.Error(err))
			continue
		}

		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(record) {
				row[col] = strings.TrimSpace(record[i])
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}
