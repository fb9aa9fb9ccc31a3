package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "transactions.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteAppendAndReadAll(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleRows(t, "TXN_20250901_103000_000001")))

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "Milk", got[0].ItemName)
	assert.Equal(t, "3.50", got[0].Price.StringFixed(2))
	assert.Equal(t, 2, got[0].Quantity)
	assert.Equal(t, "Bread", got[1].ItemName)
	assert.Equal(t, "2.48", got[1].Total.StringFixed(2))
}

func TestSQLiteDelete(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, sampleRows(t, "TXN_20250901_103000_000001")))
	require.NoError(t, s.Append(ctx, sampleRows(t, "TXN_20250901_104500_000002")))

	removed, err := s.Delete(ctx, "TXN_20250901_103000_000001")
	require.NoError(t, err)
	assert.Equal(t, 2, removed)

	removed, err = s.Delete(ctx, "TXN_20250901_103000_000001")
	require.NoError(t, err)
	assert.Equal(t, 0, removed)

	got, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "TXN_20250901_104500_000002", got[0].TransactionID)
}

func TestSQLiteSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "transactions.db")
	ctx := context.Background()

	s, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s.Append(ctx, sampleRows(t, "TXN_20250901_103000_000001")))
	require.NoError(t, s.Close())

	s2, err := OpenSQLite(path)
	require.NoError(t, err)
	defer s2.Close()

	got, err := s2.ReadAll(ctx)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
