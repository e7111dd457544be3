package store

import (
	"errors"
	"testing"
	"time"

	"nestpoint/internal/model"
	"nestpoint/internal/table"
)

func TestPostCreateWithMedia(t *testing.T) {
	s := NewPostStore(setupTestTables(t))

	media := &model.Media{
		URL:         "https://storage.example/space1/photo.jpg",
		ContentType: "image/jpeg",
		Name:        "photo.jpg",
		Size:        12345,
	}
	post, err := s.Create("space1", "look at this", media, "user1", "Alice")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if post.ID == "" {
		t.Error("expected non-empty post id")
	}

	posts, err := s.List("space1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("len = %d, want 1", len(posts))
	}
	got := posts[0]
	if got.Media == nil {
		t.Fatal("expected media to survive the round trip")
	}
	if got.Media.URL != media.URL {
		t.Errorf("media url = %q, want %q", got.Media.URL, media.URL)
	}
	if got.Media.Size != media.Size {
		t.Errorf("media size = %d, want %d", got.Media.Size, media.Size)
	}
	if got.AuthorName != "Alice" {
		t.Errorf("author = %q, want %q", got.AuthorName, "Alice")
	}
}

func TestPostTextOnly(t *testing.T) {
	s := NewPostStore(setupTestTables(t))

	if _, err := s.Create("space1", "just words", nil, "user1", "Alice"); err != nil {
		t.Fatalf("create: %v", err)
	}
	posts, err := s.List("space1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if posts[0].Media != nil {
		t.Errorf("media = %+v, want nil", posts[0].Media)
	}
}

func TestPostListNewestFirst(t *testing.T) {
	s := NewPostStore(setupTestTables(t))

	s.Create("space1", "first", nil, "u", "U")
	time.Sleep(5 * time.Millisecond)
	s.Create("space1", "second", nil, "u", "U")

	posts, err := s.List("space1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("len = %d, want 2", len(posts))
	}
	if posts[0].Text != "second" {
		t.Errorf("first listed = %q, want newest", posts[0].Text)
	}
}

func TestPostDelete(t *testing.T) {
	s := NewPostStore(setupTestTables(t))

	post, err := s.Create("space1", "bye", nil, "u", "U")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := s.Delete("space1", post.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	err = s.Delete("space1", post.ID)
	if !errors.Is(err, table.ErrNotFound) {
		t.Errorf("second delete err = %v, want ErrNotFound", err)
	}
}
