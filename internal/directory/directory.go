// Package directory holds the space, membership, invite, and user-preference
// operations. It is the only place with cross-entity invariants: one
// membership row per (user, space), first member is the Owner, one live
// invite code per space.
package directory

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"nestpoint/internal/model"
	"nestpoint/internal/principal"
	"nestpoint/internal/table"
)

// ErrInvalidInvite reports that no invite with the given code exists for the
// space. A regenerated code is removed, so superseded codes land here too.
var ErrInvalidInvite = errors.New("invalid invite code")

// ErrSpaceNotFound reports that the space itself does not exist.
var ErrSpaceNotFound = errors.New("space not found")

// prefsRowKey is the fixed row key of the single preference entity per user.
const prefsRowKey = "prefs"

type Directory struct {
	tables *table.Store
}

func New(tables *table.Store) *Directory {
	return &Directory{tables: tables}
}

// CreateSpace writes the space, an Owner membership for the creator, and the
// initial invite. The three writes are not atomic; a partial failure leaves a
// space that can be recovered by hand, which is accepted at this scale.
func (d *Directory) CreateSpace(name string, owner principal.Principal) (*model.Space, error) {
	code, err := newInviteCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	space := model.Space{
		ID:              uuid.NewString(),
		Name:            name,
		CreatedAt:       now,
		InviteCode:      code,
		InviteCreatedAt: now,
	}
	if err := d.putSpace(&space); err != nil {
		return nil, err
	}

	membership := model.Membership{
		UserID:    owner.UserID,
		SpaceID:   space.ID,
		Role:      model.RoleOwner,
		UserName:  owner.Name,
		Provider:  owner.Provider,
		SpaceName: name,
		CreatedAt: now,
	}
	if err := d.putMembership(&membership); err != nil {
		return nil, err
	}

	invite := model.Invite{
		SpaceID:   space.ID,
		Code:      code,
		CreatedBy: owner.UserID,
		CreatedAt: now,
	}
	if err := d.putInvite(&invite); err != nil {
		return nil, err
	}

	return &space, nil
}

// GetSpace returns the space, or (nil, nil) when it does not exist.
func (d *Directory) GetSpace(spaceID string) (*model.Space, error) {
	body, err := d.tables.Get(table.Spaces, "space", spaceID)
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var space model.Space
	if err := json.Unmarshal(body, &space); err != nil {
		return nil, fmt.Errorf("decode space: %w", err)
	}
	return &space, nil
}

// ListSpacesForUser returns the user's memberships, newest join first.
func (d *Directory) ListSpacesForUser(userID string) ([]model.Membership, error) {
	bodies, err := d.tables.ListPartition(table.Memberships, userID)
	if err != nil {
		return nil, err
	}
	memberships, err := decodeMemberships(bodies)
	if err != nil {
		return nil, err
	}
	sort.Slice(memberships, func(i, j int) bool {
		return memberships[i].CreatedAt.After(memberships[j].CreatedAt)
	})
	return memberships, nil
}

// GetMembership returns the user's membership in a space, or (nil, nil) when
// no relation exists.
func (d *Directory) GetMembership(userID, spaceID string) (*model.Membership, error) {
	body, err := d.tables.Get(table.Memberships, userID, spaceID)
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var m model.Membership
	if err := json.Unmarshal(body, &m); err != nil {
		return nil, fmt.Errorf("decode membership: %w", err)
	}
	return &m, nil
}

// ListMembers returns every membership in a space, oldest join first.
func (d *Directory) ListMembers(spaceID string) ([]model.Membership, error) {
	bodies, err := d.tables.ListRow(table.Memberships, spaceID)
	if err != nil {
		return nil, err
	}
	members, err := decodeMemberships(bodies)
	if err != nil {
		return nil, err
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].CreatedAt.Before(members[j].CreatedAt)
	})
	return members, nil
}

// RegenerateInvite issues a fresh code for the space and removes the
// superseded invite rows, so old codes stop being redeemable. Role checks are
// the caller's job.
func (d *Directory) RegenerateInvite(spaceID, actorID string) (*model.Invite, error) {
	space, err := d.GetSpace(spaceID)
	if err != nil {
		return nil, err
	}
	if space == nil {
		return nil, ErrSpaceNotFound
	}

	code, err := newInviteCode()
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()

	old, err := d.tables.ListPartition(table.Invites, spaceID)
	if err != nil {
		return nil, err
	}
	for _, body := range old {
		var inv model.Invite
		if err := json.Unmarshal(body, &inv); err != nil {
			return nil, fmt.Errorf("decode invite: %w", err)
		}
		if err := d.tables.Delete(table.Invites, spaceID, inv.Code); err != nil && !errors.Is(err, table.ErrNotFound) {
			return nil, err
		}
	}

	space.InviteCode = code
	space.InviteCreatedAt = now
	if err := d.putSpace(space); err != nil {
		return nil, err
	}

	invite := model.Invite{
		SpaceID:   spaceID,
		Code:      code,
		CreatedBy: actorID,
		CreatedAt: now,
	}
	if err := d.putInvite(&invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

// RedeemInvite joins the user to the space as a Member. Redeeming a valid
// code while already a member is a no-op success. The code is matched
// case-sensitively; callers uppercase user input first.
func (d *Directory) RedeemInvite(spaceID, code string, user principal.Principal) error {
	space, err := d.GetSpace(spaceID)
	if err != nil {
		return err
	}
	if space == nil {
		return ErrSpaceNotFound
	}

	if _, err := d.tables.Get(table.Invites, spaceID, code); err != nil {
		if errors.Is(err, table.ErrNotFound) {
			return ErrInvalidInvite
		}
		return err
	}

	existing, err := d.GetMembership(user.UserID, spaceID)
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	membership := model.Membership{
		UserID:    user.UserID,
		SpaceID:   spaceID,
		Role:      model.RoleMember,
		UserName:  user.Name,
		Provider:  user.Provider,
		SpaceName: space.Name,
		CreatedAt: time.Now().UTC(),
	}
	return d.putMembership(&membership)
}

// SetActiveSpace unconditionally overwrites the user's preference. Membership
// validation happens at the call site.
func (d *Directory) SetActiveSpace(userID, spaceID string) error {
	prefs := model.UserPrefs{
		UserID:        userID,
		ActiveSpaceID: spaceID,
		UpdatedAt:     time.Now().UTC(),
	}
	body, err := json.Marshal(prefs)
	if err != nil {
		return fmt.Errorf("encode prefs: %w", err)
	}
	return d.tables.Upsert(table.UserPrefs, userID, prefsRowKey, body)
}

// GetPrefs returns the user's preferences, or (nil, nil) if never set.
func (d *Directory) GetPrefs(userID string) (*model.UserPrefs, error) {
	body, err := d.tables.Get(table.UserPrefs, userID, prefsRowKey)
	if errors.Is(err, table.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var prefs model.UserPrefs
	if err := json.Unmarshal(body, &prefs); err != nil {
		return nil, fmt.Errorf("decode prefs: %w", err)
	}
	return &prefs, nil
}

func (d *Directory) putSpace(space *model.Space) error {
	body, err := json.Marshal(space)
	if err != nil {
		return fmt.Errorf("encode space: %w", err)
	}
	return d.tables.Upsert(table.Spaces, "space", space.ID, body)
}

func (d *Directory) putMembership(m *model.Membership) error {
	body, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode membership: %w", err)
	}
	return d.tables.Upsert(table.Memberships, m.UserID, m.SpaceID, body)
}

func (d *Directory) putInvite(inv *model.Invite) error {
	body, err := json.Marshal(inv)
	if err != nil {
		return fmt.Errorf("encode invite: %w", err)
	}
	return d.tables.Upsert(table.Invites, inv.SpaceID, inv.Code, body)
}

func decodeMemberships(bodies [][]byte) ([]model.Membership, error) {
	var memberships []model.Membership
	for _, body := range bodies {
		var m model.Membership
		if err := json.Unmarshal(body, &m); err != nil {
			return nil, fmt.Errorf("decode membership: %w", err)
		}
		memberships = append(memberships, m)
	}
	return memberships, nil
}
