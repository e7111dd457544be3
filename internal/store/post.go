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

type PostStore struct {
	tables *table.Store
}

func NewPostStore(tables *table.Store) *PostStore {
	return &PostStore{tables: tables}
}

func (s *PostStore) Create(spaceID, text string, media *model.Media, authorID, authorName string) (*model.Post, error) {
	post := model.Post{
		ID:         uuid.NewString(),
		SpaceID:    spaceID,
		Text:       text,
		Media:      media,
		CreatedAt:  time.Now().UTC(),
		AuthorID:   authorID,
		AuthorName: authorName,
	}
	body, err := json.Marshal(post)
	if err != nil {
		return nil, fmt.Errorf("encode post: %w", err)
	}
	if err := s.tables.Insert(table.Posts, spaceID, post.ID, body); err != nil {
		return nil, err
	}
	return &post, nil
}

// List returns every post in the space, newest first. The feed is unbounded.
func (s *PostStore) List(spaceID string) ([]model.Post, error) {
	bodies, err := s.tables.ListPartition(table.Posts, spaceID)
	if err != nil {
		return nil, err
	}

	var posts []model.Post
	for _, body := range bodies {
		var p model.Post
		if err := json.Unmarshal(body, &p); err != nil {
			return nil, fmt.Errorf("decode post: %w", err)
		}
		posts = append(posts, p)
	}
	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})
	return posts, nil
}

func (s *PostStore) Delete(spaceID, id string) error {
	return s.tables.Delete(table.Posts, spaceID, id)
}
