package model

import "time"

// Media describes an already-uploaded blob attached to a post. The bytes live
// in object storage; only the descriptor is persisted with the post.
type Media struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Name        string `json:"name"`
	Size        int64  `json:"size"`
}

type Post struct {
	ID         string    `json:"id"`
	SpaceID    string    `json:"space_id"`
	Text       string    `json:"text"`
	Media      *Media    `json:"media,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
}
