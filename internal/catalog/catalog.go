// Package catalog loads the content descriptor: the list of sounds,
// meditations, and exercises shown in the library. A catalog ships with the
// binary; a remote or local override can replace it.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lullapp/lull/internal/model"
)

//go:embed catalog.json
var bundledCatalog []byte

// document is the on-disk/remote catalog shape.
type document struct {
	Version int                 `json:"version"`
	Items   []model.ContentItem `json:"items"`
}

// Default returns the catalog bundled with the binary.
func Default() ([]model.ContentItem, error) {
	return parse(bundledCatalog)
}

// LoadFile reads a catalog from a local JSON file.
func LoadFile(path string) ([]model.ContentItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}
	items, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return items, nil
}

// parse decodes and validates catalog JSON. Items without an id or title
// are rejected so list rendering and caching never see empty keys.
func parse(data []byte) ([]model.ContentItem, error) {
	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for i, item := range doc.Items {
		if item.ID == "" {
			return nil, fmt.Errorf("catalog item %d has no id", i)
		}
		if item.Title == "" {
			return nil, fmt.Errorf("catalog item %q has no title", item.ID)
		}
	}
	return doc.Items, nil
}

// ByKind returns the items of a single kind, preserving catalog order.
func ByKind(items []model.ContentItem, kind model.ContentKind) []model.ContentItem {
	var out []model.ContentItem
	for _, item := range items {
		if item.Kind == kind {
			out = append(out, item)
		}
	}
	return out
}

// FindByID returns the item with the given id, or nil.
func FindByID(items []model.ContentItem, id string) *model.ContentItem {
	for i := range items {
		if items[i].ID == id {
			return &items[i]
		}
	}
	return nil
}
