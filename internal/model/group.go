package model

import "time"

// Group is a practice group other users can join.
//
// InviteCode is a short random string (xid) generated at creation. Private
// groups are joinable only by invite code; public groups also appear in
// the group directory.
type Group struct {
	GroupID     int64     `json:"groupId"     db:"group_id"`
	GroupName   string    `json:"groupName"   db:"group_name"`
	Description string    `json:"description" db:"description"`
	OwnerID     int64     `json:"ownerId"     db:"owner_id"`
	IsPublic    bool      `json:"isPublic"    db:"is_public"`
	MaxMembers  int       `json:"maxMembers"  db:"max_members"`
	InviteCode  string    `json:"inviteCode"  db:"invite_code"`
	CreatedAt   time.Time `json:"createdAt"   db:"created_at"`
}

// Group member roles.
const (
	GroupRoleOwner  = "owner"
	GroupRoleMember = "member"
)

// GroupMember is one user's membership in a group.
// (group_id, user_id) is UNIQUE — a user joins a group at most once.
type GroupMember struct {
	MemberID int64     `json:"memberId" db:"member_id"`
	GroupID  int64     `json:"groupId"  db:"group_id"`
	UserID   int64     `json:"userId"   db:"user_id"`
	Role     string    `json:"role"     db:"role"`
	JoinedAt time.Time `json:"joinedAt" db:"joined_at"`

	// Nickname is joined in from the users table for member listings.
	Nickname string `json:"nickname" db:"nickname"`
}
