package directory

import (
	"errors"
	"strings"
	"testing"
	"time"

	"nestpoint/internal/database"
	"nestpoint/internal/model"
	"nestpoint/internal/principal"
	"nestpoint/internal/table"
)

func setupTestDirectory(t *testing.T) *Directory {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return New(table.New(db))
}

var alice = principal.Principal{UserID: "user-alice", Name: "Alice", Provider: "github"}
var bob = principal.Principal{UserID: "user-bob", Name: "Bob", Provider: "aad"}

func TestCreateSpace(t *testing.T) {
	dir := setupTestDirectory(t)

	space, err := dir.CreateSpace("The Nest", alice)
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	if space.ID == "" {
		t.Error("expected non-empty space id")
	}
	if space.Name != "The Nest" {
		t.Errorf("name = %q, want %q", space.Name, "The Nest")
	}
	if len(space.InviteCode) != inviteCodeLength {
		t.Errorf("invite code length = %d, want %d", len(space.InviteCode), inviteCodeLength)
	}
	for _, c := range space.InviteCode {
		if !strings.ContainsRune(inviteAlphabet, c) {
			t.Errorf("invite code %q contains %q outside alphabet", space.InviteCode, c)
		}
	}

	// Creator becomes the Owner
	m, err := dir.GetMembership(alice.UserID, space.ID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if m == nil {
		t.Fatal("expected owner membership after create")
	}
	if m.Role != model.RoleOwner {
		t.Errorf("role = %q, want %q", m.Role, model.RoleOwner)
	}
	if m.SpaceName != "The Nest" {
		t.Errorf("space name on membership = %q, want %q", m.SpaceName, "The Nest")
	}
}

func TestGetSpaceMissing(t *testing.T) {
	dir := setupTestDirectory(t)

	space, err := dir.GetSpace("nope")
	if err != nil {
		t.Fatalf("get space: %v", err)
	}
	if space != nil {
		t.Errorf("space = %+v, want nil", space)
	}
}

func TestListSpacesForUserNewestFirst(t *testing.T) {
	dir := setupTestDirectory(t)

	first, err := dir.CreateSpace("First", alice)
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	second, err := dir.CreateSpace("Second", alice)
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	memberships, err := dir.ListSpacesForUser(alice.UserID)
	if err != nil {
		t.Fatalf("list spaces: %v", err)
	}
	if len(memberships) != 2 {
		t.Fatalf("len = %d, want 2", len(memberships))
	}
	if memberships[0].SpaceID != second.ID {
		t.Errorf("first listed = %q, want newest %q", memberships[0].SpaceID, second.ID)
	}
	if memberships[1].SpaceID != first.ID {
		t.Errorf("second listed = %q, want oldest %q", memberships[1].SpaceID, first.ID)
	}
}

func TestRedeemInvite(t *testing.T) {
	dir := setupTestDirectory(t)

	space, err := dir.CreateSpace("The Nest", alice)
	if err != nil {
		t.Fatalf("create space: %v", err)
	}

	if err := dir.RedeemInvite(space.ID, space.InviteCode, bob); err != nil {
		t.Fatalf("redeem: %v", err)
	}

	m, err := dir.GetMembership(bob.UserID, space.ID)
	if err != nil {
		t.Fatalf("get membership: %v", err)
	}
	if m == nil {
		t.Fatal("expected membership after redeem")
	}
	if m.Role != model.RoleMember {
		t.Errorf("role = %q, want %q", m.Role, model.RoleMember)
	}

	members, err := dir.ListMembers(space.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("member count = %d, want 2", len(members))
	}
	// Oldest join first: owner before joiner
	if members[0].UserID != alice.UserID {
		t.Errorf("first member = %q, want owner %q", members[0].UserID, alice.UserID)
	}
}

func TestRedeemInviteIdempotent(t *testing.T) {
	dir := setupTestDirectory(t)

	space, err := dir.CreateSpace("The Nest", alice)
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	if err := dir.RedeemInvite(space.ID, space.InviteCode, bob); err != nil {
		t.Fatalf("first redeem: %v", err)
	}
	if err := dir.RedeemInvite(space.ID, space.InviteCode, bob); err != nil {
		t.Fatalf("second redeem: %v", err)
	}

	members, err := dir.ListMembers(space.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("member count = %d, want 2", len(members))
	}
}

func TestRedeemInviteErrors(t *testing.T) {
	dir := setupTestDirectory(t)

	space, err := dir.CreateSpace("The Nest", alice)
	if err != nil {
		t.Fatalf("create space: %v", err)
	}

	err = dir.RedeemInvite("missing-space", "AAAAAAAA", bob)
	if !errors.Is(err, ErrSpaceNotFound) {
		t.Errorf("err = %v, want ErrSpaceNotFound", err)
	}

	err = dir.RedeemInvite(space.ID, "WRONGCOD", bob)
	if !errors.Is(err, ErrInvalidInvite) {
		t.Errorf("err = %v, want ErrInvalidInvite", err)
	}
}

func TestRegenerateInviteInvalidatesOldCode(t *testing.T) {
	dir := setupTestDirectory(t)

	space, err := dir.CreateSpace("The Nest", alice)
	if err != nil {
		t.Fatalf("create space: %v", err)
	}
	oldCode := space.InviteCode

	invite, err := dir.RegenerateInvite(space.ID, alice.UserID)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if invite.Code == oldCode {
		t.Error("expected a fresh code after regenerate")
	}

	// Old code is gone
	err = dir.RedeemInvite(space.ID, oldCode, bob)
	if !errors.Is(err, ErrInvalidInvite) {
		t.Errorf("redeem old code err = %v, want ErrInvalidInvite", err)
	}

	// New code works
	if err := dir.RedeemInvite(space.ID, invite.Code, bob); err != nil {
		t.Fatalf("redeem new code: %v", err)
	}

	// Space record carries the new code
	got, err := dir.GetSpace(space.ID)
	if err != nil {
		t.Fatalf("get space: %v", err)
	}
	if got.InviteCode != invite.Code {
		t.Errorf("space invite code = %q, want %q", got.InviteCode, invite.Code)
	}
}

func TestRegenerateInviteMissingSpace(t *testing.T) {
	dir := setupTestDirectory(t)

	_, err := dir.RegenerateInvite("missing", alice.UserID)
	if !errors.Is(err, ErrSpaceNotFound) {
		t.Errorf("err = %v, want ErrSpaceNotFound", err)
	}
}

func TestActiveSpacePrefs(t *testing.T) {
	dir := setupTestDirectory(t)

	prefs, err := dir.GetPrefs(alice.UserID)
	if err != nil {
		t.Fatalf("get prefs: %v", err)
	}
	if prefs != nil {
		t.Errorf("prefs = %+v, want nil before first set", prefs)
	}

	if err := dir.SetActiveSpace(alice.UserID, "s1"); err != nil {
		t.Fatalf("set active space: %v", err)
	}
	if err := dir.SetActiveSpace(alice.UserID, "s2"); err != nil {
		t.Fatalf("set active space again: %v", err)
	}

	prefs, err = dir.GetPrefs(alice.UserID)
	if err != nil {
		t.Fatalf("get prefs: %v", err)
	}
	if prefs == nil {
		t.Fatal("expected prefs after set")
	}
	if prefs.ActiveSpaceID != "s2" {
		t.Errorf("active space = %q, want %q", prefs.ActiveSpaceID, "s2")
	}
}

func TestNewInviteCodeUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		code, err := newInviteCode()
		if err != nil {
			t.Fatalf("new invite code: %v", err)
		}
		if len(code) != inviteCodeLength {
			t.Fatalf("code length = %d, want %d", len(code), inviteCodeLength)
		}
		if seen[code] {
			t.Fatalf("duplicate code %q", code)
		}
		seen[code] = true
	}
}
