package model

import "time"

// Work order statuses. Anything not Done counts as open on the dashboard.
const (
	WorkOrderOpen       = "Open"
	WorkOrderInProgress = "InProgress"
	WorkOrderDone       = "Done"
)

type WorkOrder struct {
	ID          string     `json:"id"`
	SpaceID     string     `json:"space_id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	CreatedBy   string     `json:"created_by"`
}
