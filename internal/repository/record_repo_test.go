package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"traveldesk-backend/internal/models"
)

func vendorRecord(name string) *models.FinancialRecord {
	return &models.FinancialRecord{
		Kind:           models.KindExpense,
		VendorOrClient: name,
		Status:         models.RecordStatusOpen,
	}
}

func TestRankVendors(t *testing.T) {
	candidates := []*models.FinancialRecord{
		vendorRecord("Olympic Travel"),
		vendorRecord("Aegean Airlines"),
		vendorRecord("aegean"),
		vendorRecord("ΔΕΗ Α.Ε."),
	}

	t.Run("substring hit ranks first", func(t *testing.T) {
		ranked := rankVendors("aegean", candidates, 10)
		require.NotEmpty(t, ranked)
		// Both Aegean entries contain the query; the shorter exact one keeps
		// its earlier relative position among distance-0 hits.
		assert.Equal(t, "Aegean Airlines", ranked[0].VendorOrClient)
		assert.Equal(t, "aegean", ranked[1].VendorOrClient)
	})

	t.Run("typo still finds vendor", func(t *testing.T) {
		ranked := rankVendors("aegaen", candidates, 10)
		require.NotEmpty(t, ranked)
		assert.Equal(t, "aegean", ranked[0].VendorOrClient)
	})

	t.Run("greek query matches normalized vendor", func(t *testing.T) {
		ranked := rankVendors("δεη", candidates, 10)
		require.NotEmpty(t, ranked)
		assert.Equal(t, "ΔΕΗ Α.Ε.", ranked[0].VendorOrClient)
	})

	t.Run("distant names are dropped", func(t *testing.T) {
		ranked := rankVendors("zzz", candidates, 10)
		assert.Empty(t, ranked)
	})

	t.Run("limit respected", func(t *testing.T) {
		ranked := rankVendors("aegean", candidates, 1)
		assert.Len(t, ranked, 1)
	})
}
