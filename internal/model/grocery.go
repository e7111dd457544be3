package model

import "time"

type GroceryItem struct {
	ID        string     `json:"id"`
	SpaceID   string     `json:"space_id"`
	Text      string     `json:"text"`
	Category  string     `json:"category"`
	Purchased bool       `json:"purchased"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
	CreatedBy string     `json:"created_by"`
}
