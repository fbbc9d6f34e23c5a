package storage

import (
	"fmt"
	"os"

	json "github.com/goccy/go-json"
	"github.com/rewired-gh/eventoracle/internal/models"
)

// CatalogFile is the on-disk JSON layout of a catalog.
type CatalogFile struct {
	Version string `json:"version,omitempty"`
	models.Catalog
}

// LoadFile reads and validates a JSON catalog. A missing file is an error:
// unlike a cache, an empty catalog is never a sensible default.
func LoadFile(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return DecodeCatalog(data)
}

// DecodeCatalog parses and validates a JSON catalog document.
func DecodeCatalog(data []byte) (*models.Catalog, error) {
	var file CatalogFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	catalog := file.Catalog
	if catalog.Similarity == nil {
		catalog.Similarity = make(models.SimilarityIndex)
	}
	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog: %w", err)
	}
	return &catalog, nil
}
