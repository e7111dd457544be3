package store

import (
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"nestpoint/internal/model"
	"nestpoint/internal/table"
)

type CalendarStore struct {
	tables *table.Store
}

func NewCalendarStore(tables *table.Store) *CalendarStore {
	return &CalendarStore{tables: tables}
}

func (s *CalendarStore) Create(spaceID, title string, date time.Time, category, notes, createdBy string) (*model.CalendarEvent, error) {
	event := model.CalendarEvent{
		ID:        uuid.NewString(),
		SpaceID:   spaceID,
		Title:     title,
		Date:      date.UTC(),
		Category:  category,
		Notes:     notes,
		CreatedAt: time.Now().UTC(),
		CreatedBy: createdBy,
	}
	body, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode event: %w", err)
	}
	if err := s.tables.Insert(table.CalendarEvents, spaceID, event.ID, body); err != nil {
		return nil, err
	}
	return &event, nil
}

// List scans the space partition and keeps events with date in
// [start, end), sorted ascending by date.
func (s *CalendarStore) List(spaceID string, start, end time.Time) ([]model.CalendarEvent, error) {
	bodies, err := s.tables.ListPartition(table.CalendarEvents, spaceID)
	if err != nil {
		return nil, err
	}

	var events []model.CalendarEvent
	for _, body := range bodies {
		var e model.CalendarEvent
		if err := json.Unmarshal(body, &e); err != nil {
			return nil, fmt.Errorf("decode event: %w", err)
		}
		if e.Date.Before(start) || !e.Date.Before(end) {
			continue
		}
		events = append(events, e)
	}
	sort.Slice(events, func(i, j int) bool {
		return events[i].Date.Before(events[j].Date)
	})
	return events, nil
}

func (s *CalendarStore) Delete(spaceID, id string) error {
	return s.tables.Delete(table.CalendarEvents, spaceID, id)
}
