package models

import "time"

// Role is a member's permission level inside a group.
type Role string

const (
	RoleAdmin  Role = "ADMIN"
	RoleMember Role = "MEMBER"
)

// Group represents a set of users who can wager against each other.
type Group struct {
	// ID is the unique identifier for the group (UUID format).
	ID string

	// Name is the display name of the group (e.g., "The Squad").
	Name string

	// Description is a free-form blurb shown on the group page.
	Description string

	// InviteCode is the unique code other users redeem to join.
	InviteCode string

	// CreatedBy is the user ID of the group's creator.
	// The creator is always the first member and an ADMIN.
	CreatedBy string

	// Members is the set of memberships. Order carries no meaning.
	Members []GroupMember

	// CreatedAt is when the group was created.
	CreatedAt time.Time
}

// GroupMember binds a user to a group with a role.
type GroupMember struct {
	UserID   string
	Role     Role
	JoinedAt time.Time
}

// Member returns the membership record for userID.
func (g *Group) Member(userID string) (GroupMember, bool) {
	for _, m := range g.Members {
		if m.UserID == userID {
			return m, true
		}
	}
	return GroupMember{}, false
}

// IsMember reports whether userID belongs to the group.
func (g *Group) IsMember(userID string) bool {
	_, ok := g.Member(userID)
	return ok
}

// IsAdmin reports whether userID is an ADMIN of the group.
func (g *Group) IsAdmin(userID string) bool {
	m, ok := g.Member(userID)
	return ok && m.Role == RoleAdmin
}

// Clone returns a deep copy of the group.
func (g *Group) Clone() *Group {
	if g == nil {
		return nil
	}
	c := *g
	c.Members = append([]GroupMember(nil), g.Members...)
	return &c
}
