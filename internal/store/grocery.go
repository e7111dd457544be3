package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"nestpoint/internal/model"
	"nestpoint/internal/table"
)

type GroceryStore struct {
	tables *table.Store
}

func NewGroceryStore(tables *table.Store) *GroceryStore {
	return &GroceryStore{tables: tables}
}

func (s *GroceryStore) Create(spaceID, text, category, createdBy string) (*model.GroceryItem, error) {
	item := model.GroceryItem{
		ID:        uuid.NewString(),
		SpaceID:   spaceID,
		Text:      text,
		Category:  category,
		Purchased: false,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
	body, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	if err := s.tables.Insert(table.GroceryItems, spaceID, item.ID, body); err != nil {
		return nil, err
	}
	return &item, nil
}

// List scans the space partition. Purchased items are kept only when showDone
// is set. Unpurchased items sort first, then newest within each group.
func (s *GroceryStore) List(spaceID string, showDone bool) ([]model.GroceryItem, error) {
	bodies, err := s.tables.ListPartition(table.GroceryItems, spaceID)
	if err != nil {
		return nil, err
	}

	var items []model.GroceryItem
	for _, body := range bodies {
		var item model.GroceryItem
		if err := json.Unmarshal(body, &item); err != nil {
			return nil, fmt.Errorf("decode item: %w", err)
		}
		if item.Purchased && !showDone {
			continue
		}
		items = append(items, item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Purchased != items[j].Purchased {
			return !items[i].Purchased
		}
		return items[i].CreatedAt.After(items[j].CreatedAt)
	})
	return items, nil
}

// SetPurchased is a point read-modify-write. Returns (nil, nil) when the item
// does not exist.
func (s *GroceryStore) SetPurchased(spaceID, id string, purchased bool) (*model.GroceryItem, error) {
	body, err := s.tables.Get(table.GroceryItems, spaceID, id)
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var item model.GroceryItem
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode item: %w", err)
	}

	now := time.Now().UTC()
	item.Purchased = purchased
	item.UpdatedAt = &now

	updated, err := json.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("encode item: %w", err)
	}
	if err := s.tables.Upsert(table.GroceryItems, spaceID, id, updated); err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *GroceryStore) Delete(spaceID, id string) error {
	return s.tables.Delete(table.GroceryItems, spaceID, id)
}
