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

type WorkOrderStore struct {
	tables *table.Store
}

func NewWorkOrderStore(tables *table.Store) *WorkOrderStore {
	return &WorkOrderStore{tables: tables}
}

func (s *WorkOrderStore) Create(spaceID, title, description, priority string, dueDate *time.Time, createdBy string) (*model.WorkOrder, error) {
	order := model.WorkOrder{
		ID:          uuid.NewString(),
		SpaceID:     spaceID,
		Title:       title,
		Description: description,
		Status:      model.WorkOrderOpen,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   time.Now().UTC(),
		CreatedBy:   createdBy,
	}
	body, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode work order: %w", err)
	}
	if err := s.tables.Insert(table.WorkOrders, spaceID, order.ID, body); err != nil {
		return nil, err
	}
	return &order, nil
}

// List scans the space partition, optionally keeping only one status,
// newest first.
func (s *WorkOrderStore) List(spaceID, status string) ([]model.WorkOrder, error) {
	bodies, err := s.tables.ListPartition(table.WorkOrders, spaceID)
	if err != nil {
		return nil, err
	}

	var orders []model.WorkOrder
	for _, body := range bodies {
		var o model.WorkOrder
		if err := json.Unmarshal(body, &o); err != nil {
			return nil, fmt.Errorf("decode work order: %w", err)
		}
		if status != "" && o.Status != status {
			continue
		}
		orders = append(orders, o)
	}
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
	return orders, nil
}

// UpdateStatus is a point read-modify-write with last-write-wins semantics.
// Returns (nil, nil) when the order does not exist.
func (s *WorkOrderStore) UpdateStatus(spaceID, id, status string) (*model.WorkOrder, error) {
	body, err := s.tables.Get(table.WorkOrders, spaceID, id)
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var order model.WorkOrder
	if err := json.Unmarshal(body, &order); err != nil {
		return nil, fmt.Errorf("decode work order: %w", err)
	}

	now := time.Now().UTC()
	order.Status = status
	order.UpdatedAt = &now

	updated, err := json.Marshal(order)
	if err != nil {
		return nil, fmt.Errorf("encode work order: %w", err)
	}
	if err := s.tables.Upsert(table.WorkOrders, spaceID, id, updated); err != nil {
		return nil, err
	}
	return &order, nil
}

func (s *WorkOrderStore) Delete(spaceID, id string) error {
	return s.tables.Delete(table.WorkOrders, spaceID, id)
}
