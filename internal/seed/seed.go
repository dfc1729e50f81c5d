// Package seed holds the starter menu shipped with the binary.
package seed

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/example/tastetab/internal/models"
)

//go:embed items.yaml
var itemsYAML []byte

// Items decodes the embedded dataset. Every call returns fresh values without
// ids so the result can be inserted directly.
func Items() ([]models.Item, error) {
	return ParseItems(itemsYAML)
}

// ParseItems decodes a yaml list of menu items and rejects entries missing a
// name, a category or a positive price.
func ParseItems(data []byte) ([]models.Item, error) {
	var items []models.Item
	if err := yaml.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode seed items: %w", err)
	}

	for i, item := range items {
		if item.Name == "" || item.Category == "" || item.Price <= 0 {
			return nil, fmt.Errorf("seed item %d is incomplete", i)
		}
	}
	return items, nil
}
