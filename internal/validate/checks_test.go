package validate

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Astoviq/demo-source-data-astoviq-sub001/internal/config"
)

func TestDefaultChecksConfig(t *testing.T) {
	cfg := DefaultChecksConfig()
	assert.Equal(t, "4000", cfg.RevenueAccount)
	assert.Equal(t, "ORD", cfg.OrderRefPrefix)
	assert.Equal(t, 10.0, cfg.AbsoluteToleranceEUR)
	assert.Equal(t, 0.001, cfg.RelativeTolerance)
	assert.Equal(t, 2.0, cfg.ConversionRateMinPct)
	assert.Equal(t, 4.0, cfg.ConversionRateMaxPct)
	require.NoError(t, cfg.Validate())
}

func TestLoadChecksConfig(t *testing.T) {
	t.Run("partial file fills defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "checks.yaml")
		require.NoError(t, os.WriteFile(path, []byte("revenueAccount: \"4100\"\nabsoluteToleranceEUR: 25\n"), 0644))

		cfg, err := LoadChecksConfig(path)
		require.NoError(t, err)
		assert.Equal(t, "4100", cfg.RevenueAccount)
		assert.Equal(t, 25.0, cfg.AbsoluteToleranceEUR)
		assert.Equal(t, "ORD", cfg.OrderRefPrefix)
		assert.Equal(t, 0.001, cfg.RelativeTolerance)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadChecksConfig(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, config.ErrConfigNotFound)
	})

	t.Run("inverted band rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "checks.yaml")
		require.NoError(t, os.WriteFile(path, []byte("conversionRateMinPct: 5\nconversionRateMaxPct: 3\n"), 0644))

		_, err := LoadChecksConfig(path)
		require.ErrorIs(t, err, config.ErrInvalidConfiguration)
	})
}

func TestLoadSources(t *testing.T) {
	t.Run("GL lines with tolerant headers", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "finance_gl_lines.csv")
		content := "journal_id,journal_date,account,debit,credit,customer_id,reference\n" +
			"JRN_001,2024-06-15,4000,0.00,129.95,CUST_001,ORD_001\n" +
			"JRN_001,2024-06-15,1200,129.95,0.00,CUST_001,ORD_001\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		lines, err := LoadGLLines(path)
		require.NoError(t, err)
		require.Len(t, lines, 2)
		assert.Equal(t, "4000", lines[0].AccountID)
		assert.Equal(t, "129.95", lines[0].Credit.StringFixed(2))
		assert.Equal(t, "ORD_001", lines[0].Reference)
	})

	t.Run("GL file missing is an error", func(t *testing.T) {
		_, err := LoadGLLines(filepath.Join(t.TempDir(), "nope.csv"))
		require.Error(t, err)
	})

	t.Run("webshop sessions parse converted flag", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "webshop_sessions.csv")
		content := "session_id,customer_id,session_date,converted\n" +
			"SESS_2024_000001,CUST_001,2024-06-15,true\n" +
			"SESS_2024_000002,,2024-06-16,false\n" +
			"SESS_2024_000003,CUST_002,2024-06-17,1\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))

		sessions, err := LoadWebshopSessions(path)
		require.NoError(t, err)
		require.Len(t, sessions, 3)
		assert.True(t, sessions[0].Converted)
		assert.False(t, sessions[1].Converted)
		assert.True(t, sessions[2].Converted)
		assert.Empty(t, sessions[1].CustomerID)
	})

	t.Run("webshop file missing is optional", func(t *testing.T) {
		sessions, err := LoadWebshopSessions(filepath.Join(t.TempDir(), "nope.csv"))
		require.NoError(t, err)
		assert.Nil(t, sessions)
	})
}

func TestReport(t *testing.T) {
	results := &Results{
		Results: []Result{
			{Name: CheckRevenueReconciliation, Status: StatusPass, Expected: "x", Actual: "y"},
			{Name: CheckCustomerConsistency, Status: StatusFail, Expected: "0 orphans", Actual: "1 orphan"},
		},
		PassedCount: 1,
		FailedCount: 1,
		TotalCount:  2,
	}

	t.Run("format lists failures", func(t *testing.T) {
		out := FormatResults(results, false)
		assert.Contains(t, out, "1/2 passed")
		assert.Contains(t, out, CheckCustomerConsistency)
		assert.NotContains(t, out, "ALL CHECKS")

		verbose := FormatResults(results, true)
		assert.Contains(t, verbose, "ALL CHECKS")
		assert.Contains(t, verbose, CheckRevenueReconciliation)
	})

	t.Run("write report", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "report.json")
		report := NewReport("run-123", results)
		require.NoError(t, WriteReport(path, report))

		payload, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(payload), "run-123")
		assert.Contains(t, string(payload), CheckCustomerConsistency)
		assert.NotEmpty(t, report.ReportID)
	})
}
