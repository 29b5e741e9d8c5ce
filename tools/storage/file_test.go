package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStoreCatalogState(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "store_catalog_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "basic catalog load",
			filename: "stores.json",
			data:     []byte(`{"stores": [{"name": "Berlin Bio Markt", "city": "Berlin"}]}`),
		},
		{
			name:     "empty catalog file",
			filename: "empty.json",
			data:     []byte(`{"stores": []}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)

			err := os.WriteFile(filePath, tt.data, 0644)
			require.NoError(t, err)

			catalogState := NewFileStoreCatalogState(filePath)
			loadedData, err := catalogState.Load(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.data, loadedData)
		})
	}

	t.Run("load nonexistent catalog", func(t *testing.T) {
		nonexistentPath := filepath.Join(tmpDir, "nonexistent.json")
		catalogState := NewFileStoreCatalogState(nonexistentPath)
		_, err := catalogState.Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}

func TestFilePriceTableState(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "price_table_test")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name     string
		filename string
		data     []byte
	}{
		{
			name:     "valid price table",
			filename: "prices.json",
			data:     []byte(`{"unit_prices": {"proteins": 4.5}, "products": [{"name": "Tofu", "price": 1.79}]}`),
		},
		{
			name:     "empty price table",
			filename: "empty.json",
			data:     []byte(`{"unit_prices": {}, "products": []}`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			filePath := filepath.Join(tmpDir, tt.filename)

			err := os.WriteFile(filePath, tt.data, 0644)
			require.NoError(t, err)

			priceState := NewFilePriceTableState(filePath)
			loadedData, err := priceState.Load(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.data, loadedData)
		})
	}

	t.Run("load nonexistent file", func(t *testing.T) {
		nonexistentPath := filepath.Join(tmpDir, "nonexistent.json")
		priceState := NewFilePriceTableState(nonexistentPath)
		_, err := priceState.Load(context.Background())
		assert.Error(t, err)
		assert.True(t, os.IsNotExist(err))
	})
}
