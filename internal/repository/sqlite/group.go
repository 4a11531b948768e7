package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

var _ repository.GroupRepository = (*GroupDB)(nil)

// GroupDB is the groups + memberships slice of the store.
type GroupDB struct {
	conn *sql.DB
}

// Groups returns the group repository view of the store.
func (db *DB) Groups() *GroupDB {
	return &GroupDB{conn: db.conn}
}

const groupColumns = `group_id, group_name, description, owner_id, is_public, max_members, invite_code, created_at`

func scanGroup(row *sql.Row) (*model.Group, error) {
	var g model.Group
	err := row.Scan(
		&g.GroupID,
		&g.GroupName,
		&g.Description,
		&g.OwnerID,
		&g.IsPublic,
		&g.MaxMembers,
		&g.InviteCode,
		&g.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// Create inserts a group and its owner membership in one transaction —
// a group must never exist without its owner as a member.
func (g *GroupDB) Create(ctx context.Context, group *model.Group) error {
	group.CreatedAt = time.Now().UTC()

	tx, err := g.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning group create: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO groups (group_name, description, owner_id, is_public, max_members, invite_code, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		group.GroupName,
		group.Description,
		group.OwnerID,
		group.IsPublic,
		group.MaxMembers,
		group.InviteCode,
		group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting group %q: %w", group.GroupName, err)
	}

	group.GroupID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new group id: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?)`,
		group.GroupID, group.OwnerID, model.GroupRoleOwner, group.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting owner membership: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing group create: %w", err)
	}
	return nil
}

func (g *GroupDB) GetByID(ctx context.Context, groupID int64) (*model.Group, error) {
	row := g.conn.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE group_id = ?`, groupID)

	group, err := scanGroup(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("group", fmt.Sprint(groupID))
		}
		return nil, fmt.Errorf("sqlite: getting group %d: %w", groupID, err)
	}
	return group, nil
}

func (g *GroupDB) GetByInviteCode(ctx context.Context, code string) (*model.Group, error) {
	row := g.conn.QueryRowContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE invite_code = ?`, code)

	group, err := scanGroup(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("group", code)
		}
		return nil, fmt.Errorf("sqlite: getting group by invite code: %w", err)
	}
	return group, nil
}

func (g *GroupDB) ListPublic(ctx context.Context, opts repository.ListOptions) ([]model.Group, error) {
	rows, err := g.conn.QueryContext(ctx,
		`SELECT `+groupColumns+` FROM groups WHERE is_public = 1
		 ORDER BY created_at DESC, group_id DESC LIMIT ? OFFSET ?`,
		opts.Limit, opts.Offset)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing public groups: %w", err)
	}
	defer rows.Close()

	groups := []model.Group{}
	for rows.Next() {
		var group model.Group
		if err := rows.Scan(
			&group.GroupID,
			&group.GroupName,
			&group.Description,
			&group.OwnerID,
			&group.IsPublic,
			&group.MaxMembers,
			&group.InviteCode,
			&group.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning group: %w", err)
		}
		groups = append(groups, group)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating groups: %w", err)
	}
	return groups, nil
}

// AddMember inserts a membership row. The UNIQUE(group_id, user_id)
// constraint turns a repeat join into apperror.ErrConflict — the service
// never needs a racy membership pre-check.
func (g *GroupDB) AddMember(ctx context.Context, member *model.GroupMember) error {
	member.JoinedAt = time.Now().UTC()
	if member.Role == "" {
		member.Role = model.GroupRoleMember
	}

	res, err := g.conn.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role, joined_at)
		 VALUES (?, ?, ?, ?)`,
		member.GroupID, member.UserID, member.Role, member.JoinedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("user is already a member of this group")
		}
		return fmt.Errorf("sqlite: adding member to group %d: %w", member.GroupID, err)
	}

	member.MemberID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new member id: %w", err)
	}
	return nil
}

func (g *GroupDB) RemoveMember(ctx context.Context, groupID, userID int64) error {
	res, err := g.conn.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id = ? AND user_id = ?`,
		groupID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: removing member %d from group %d: %w", userID, groupID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking member removal: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("group membership", fmt.Sprint(userID))
	}
	return nil
}

// ListMembers joins in nicknames so listings don't need N+1 user lookups.
func (g *GroupDB) ListMembers(ctx context.Context, groupID int64) ([]model.GroupMember, error) {
	rows, err := g.conn.QueryContext(ctx,
		`SELECT gm.member_id, gm.group_id, gm.user_id, gm.role, gm.joined_at, u.nickname
		 FROM group_members gm
		 JOIN users u ON u.user_id = gm.user_id
		 WHERE gm.group_id = ?
		 ORDER BY gm.joined_at, gm.member_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing members of group %d: %w", groupID, err)
	}
	defer rows.Close()

	members := []model.GroupMember{}
	for rows.Next() {
		var m model.GroupMember
		if err := rows.Scan(&m.MemberID, &m.GroupID, &m.UserID, &m.Role, &m.JoinedAt, &m.Nickname); err != nil {
			return nil, fmt.Errorf("sqlite: scanning group member: %w", err)
		}
		members = append(members, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating group members: %w", err)
	}
	return members, nil
}

func (g *GroupDB) CountMembers(ctx context.Context, groupID int64) (int, error) {
	var count int
	err := g.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM group_members WHERE group_id = ?`, groupID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("sqlite: counting members of group %d: %w", groupID, err)
	}
	return count, nil
}
