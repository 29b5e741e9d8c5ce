package storage

import (
	"context"
	"errors"
)

type StoreCatalogState interface {
	Load(ctx context.Context) ([]byte, error)
}

type PriceTableState interface {
	Load(ctx context.Context) ([]byte, error)
}

// TestStoreCatalogState is a simple in-memory implementation for testing
type TestStoreCatalogState struct {
	data []byte
	err  error
}

func NewTestStoreCatalogState(data []byte) *TestStoreCatalogState {
	return &TestStoreCatalogState{data: data}
}

func NewTestStoreCatalogStateWithError() *TestStoreCatalogState {
	return &TestStoreCatalogState{err: errors.New("not found")}
}

func (t *TestStoreCatalogState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}

// TestPriceTableState is a simple in-memory implementation for testing
type TestPriceTableState struct {
	data []byte
	err  error
}

func NewTestPriceTableState(data []byte) *TestPriceTableState {
	return &TestPriceTableState{data: data}
}

func NewTestPriceTableStateWithError() *TestPriceTableState {
	return &TestPriceTableState{err: errors.New("not found")}
}

func (t *TestPriceTableState) Load(ctx context.Context) ([]byte, error) {
	if t.err != nil {
		return nil, t.err
	}
	return t.data, nil
}
