package model

import "time"

// Membership roles. The first member of a space is always the Owner.
const (
	RoleOwner  = "Owner"
	RoleAdmin  = "Admin"
	RoleMember = "Member"
)

// IsAdminRole reports whether the role may manage invites.
func IsAdminRole(role string) bool {
	return role == RoleOwner || role == RoleAdmin
}

type Space struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	CreatedAt       time.Time `json:"created_at"`
	InviteCode      string    `json:"invite_code"`
	InviteCreatedAt time.Time `json:"invite_created_at"`
}

// Membership links a user to a space. User name, provider, and space name are
// denormalized onto the row so listings need no extra lookups.
type Membership struct {
	UserID    string    `json:"user_id"`
	SpaceID   string    `json:"space_id"`
	Role      string    `json:"role"`
	UserName  string    `json:"user_name"`
	Provider  string    `json:"provider"`
	SpaceName string    `json:"space_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type Invite struct {
	SpaceID   string    `json:"space_id"`
	Code      string    `json:"code"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type UserPrefs struct {
	UserID        string    `json:"user_id"`
	ActiveSpaceID string    `json:"active_space_id"`
	UpdatedAt     time.Time `json:"updated_at"`
}
