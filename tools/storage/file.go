package storage

import (
	"context"
	"os"
)

type FileStoreCatalogState struct {
	FilePath string
}

func NewFileStoreCatalogState(filePath string) *FileStoreCatalogState {
	return &FileStoreCatalogState{FilePath: filePath}
}

func (s *FileStoreCatalogState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(s.FilePath)
}

type FilePriceTableState struct {
	FilePath string
}

func NewFilePriceTableState(filePath string) *FilePriceTableState {
	return &FilePriceTableState{FilePath: filePath}
}

func (p *FilePriceTableState) Load(ctx context.Context) ([]byte, error) {
	return os.ReadFile(p.FilePath)
}
