package persist

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/entity"
	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/registry"
)

func registryFixture() *registry.Registry {
	start, _ := entity.ParseDate("2024-01-01")
	end, _ := entity.ParseDate("2024-12-31")
	date, _ := entity.ParseDate("2024-06-15")

	return &registry.Registry{
		RunID:       "11111111-2222-3333-4444-555555555555",
		Seed:        42,
		GeneratedAt: time.Date(2024, 12, 31, 12, 0, 0, 0, time.UTC),
		CustomerIDs: []string{"CUST_001", "CUST_002"},
		ProductIDs:  []string{"PROD_001"},
		OrderIDs:    []string{"ORD_001"},
		Sessions: map[string]entity.SessionMapping{
			"SESS_2024_000001": {
				SessionID:      "SESS_2024_000001",
				OrderID:        "ORD_001",
				CustomerID:     "CUST_001",
				CountryCode:    "NL",
				OrderValue:     decimal.NewFromFloat(129.95),
				ConversionType: entity.ConversionPurchase,
				SessionDate:    date,
			},
		},
		TimeConfig: entity.TimeConfig{UnifiedStartDate: start, UnifiedEndDate: end, CurrentDate: end},
		CrossRefs: entity.CrossRefSummary{
			OnlineOrdersCount:       1,
			TotalOrdersCount:        1,
			TotalRevenue:            decimal.NewFromFloat(129.95),
			ConvertingSessionsCount: 1,
			TotalSessionsCount:      40,
		},
	}
}

func TestStoreSaveLoad(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zap.NewNop())
	original := registryFixture()

	require.NoError(t, store.Save(original))

	t.Run("all documents exist", func(t *testing.T) {
		for _, name := range []string{
			DocCustomers, DocProducts, DocOrders,
			DocSessionMappings, DocTimeConfig, DocCrossRefs, DocManifest,
		} {
			_, err := os.Stat(filepath.Join(dir, name+".json"))
			assert.NoError(t, err, "document %s missing", name)
		}
	})

	t.Run("round trip", func(t *testing.T) {
		loaded, err := store.Load()
		require.NoError(t, err)

		assert.Equal(t, original.RunID, loaded.RunID)
		assert.Equal(t, original.Seed, loaded.Seed)
		assert.Equal(t, original.CustomerIDs, loaded.CustomerIDs)
		assert.Equal(t, original.ProductIDs, loaded.ProductIDs)
		assert.Equal(t, original.OrderIDs, loaded.OrderIDs)
		require.Len(t, loaded.Sessions, 1)

		session := loaded.Sessions["SESS_2024_000001"]
		assert.Equal(t, "ORD_001", session.OrderID)
		assert.True(t, session.OrderValue.Equal(decimal.NewFromFloat(129.95)))
		assert.Equal(t, entity.ConversionPurchase, session.ConversionType)

		assert.Equal(t, original.CrossRefs.TotalSessionsCount, loaded.CrossRefs.TotalSessionsCount)
		assert.True(t, original.CrossRefs.TotalRevenue.Equal(loaded.CrossRefs.TotalRevenue))
		assert.True(t, original.TimeConfig.UnifiedStartDate.Equal(loaded.TimeConfig.UnifiedStartDate))
	})
}

func TestStoreOverwrite(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, zap.NewNop())

	first := registryFixture()
	require.NoError(t, store.Save(first))

	second := registryFixture()
	second.RunID = "99999999-8888-7777-6666-555555555555"
	second.CustomerIDs = []string{"CUST_900"}
	require.NoError(t, store.Save(second))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, second.RunID, loaded.RunID)
	assert.Equal(t, []string{"CUST_900"}, loaded.CustomerIDs)
}

func TestStoreLoadMissing(t *testing.T) {
	store := NewStore(t.TempDir(), zap.NewNop())
	_, err := store.Load()
	require.ErrorIs(t, err, ErrPersistence)
}

func TestStoreSaveCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "registry")
	store := NewStore(dir, zap.NewNop())

	require.NoError(t, store.Save(registryFixture()))
	_, err := os.Stat(filepath.Join(dir, DocManifest+".json"))
	assert.NoError(t, err)
}
