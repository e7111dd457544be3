package table

import (
	"errors"
	"testing"

	"nestpoint/internal/database"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(db)
}

func TestUpsertGetRoundTrip(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Upsert(Spaces, "space", "s1", []byte(`{"name":"one"}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}

	body, err := s.Get(Spaces, "space", "s1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(body) != `{"name":"one"}` {
		t.Errorf("body = %s, want %s", body, `{"name":"one"}`)
	}

	// Upsert replaces the body at the same key
	if err := s.Upsert(Spaces, "space", "s1", []byte(`{"name":"two"}`)); err != nil {
		t.Fatalf("upsert replace: %v", err)
	}
	body, err = s.Get(Spaces, "space", "s1")
	if err != nil {
		t.Fatalf("get after replace: %v", err)
	}
	if string(body) != `{"name":"two"}` {
		t.Errorf("body = %s, want %s", body, `{"name":"two"}`)
	}
}

func TestInsertConflict(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Insert(Posts, "sp1", "p1", []byte(`{}`)); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if err := s.Insert(Posts, "sp1", "p1", []byte(`{}`)); err == nil {
		t.Fatal("expected error inserting duplicate key")
	}
}

func TestGetMissingIsNotFound(t *testing.T) {
	s := setupTestStore(t)

	_, err := s.Get(Spaces, "space", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteMissingIsNotFound(t *testing.T) {
	s := setupTestStore(t)

	err := s.Delete(GroceryItems, "sp1", "missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestDeleteRemovesEntity(t *testing.T) {
	s := setupTestStore(t)

	if err := s.Upsert(GroceryItems, "sp1", "g1", []byte(`{}`)); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if err := s.Delete(GroceryItems, "sp1", "g1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(GroceryItems, "sp1", "g1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err after delete = %v, want ErrNotFound", err)
	}
}

func TestListPartitionIsolation(t *testing.T) {
	s := setupTestStore(t)

	s.Upsert(CalendarEvents, "spaceA", "e1", []byte(`{"a":1}`))
	s.Upsert(CalendarEvents, "spaceA", "e2", []byte(`{"a":2}`))
	s.Upsert(CalendarEvents, "spaceB", "e3", []byte(`{"b":3}`))

	bodies, err := s.ListPartition(CalendarEvents, "spaceA")
	if err != nil {
		t.Fatalf("list partition: %v", err)
	}
	if len(bodies) != 2 {
		t.Errorf("len = %d, want 2", len(bodies))
	}

	bodies, err = s.ListPartition(CalendarEvents, "spaceC")
	if err != nil {
		t.Fatalf("list empty partition: %v", err)
	}
	if len(bodies) != 0 {
		t.Errorf("len = %d, want 0", len(bodies))
	}
}

func TestListRowScansAcrossPartitions(t *testing.T) {
	s := setupTestStore(t)

	// memberships are keyed (userID, spaceID); reverse lookup finds all
	// members of one space
	s.Upsert(Memberships, "user1", "space1", []byte(`{"u":1}`))
	s.Upsert(Memberships, "user2", "space1", []byte(`{"u":2}`))
	s.Upsert(Memberships, "user2", "space2", []byte(`{"u":2}`))

	bodies, err := s.ListRow(Memberships, "space1")
	if err != nil {
		t.Fatalf("list row: %v", err)
	}
	if len(bodies) != 2 {
		t.Errorf("len = %d, want 2", len(bodies))
	}
}
