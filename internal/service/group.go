package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rs/xid"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

const (
	MaxGroupNameLength = 200
	DefaultMaxMembers  = 50
	MaxMaxMembers      = 500
)

// GroupService handles practice groups and memberships.
type GroupService struct {
	groups repository.GroupRepository
	logger *slog.Logger
}

func NewGroupService(groups repository.GroupRepository, logger *slog.Logger) *GroupService {
	return &GroupService{groups: groups, logger: logger}
}

// Create validates and stores a group. The creator becomes its owner
// member, and an unguessable invite code is attached (xid: random enough
// for invites, short enough to paste in a chat).
func (s *GroupService) Create(ctx context.Context, ownerID int64, group *model.Group) (*model.Group, error) {
	if group == nil {
		return nil, apperror.ValidationFailed("group", "group body is required")
	}
	group.GroupName = strings.TrimSpace(group.GroupName)
	group.Description = strings.TrimSpace(group.Description)

	if group.GroupName == "" {
		return nil, apperror.ValidationFailed("groupName", "group name is required")
	}
	if len(group.GroupName) > MaxGroupNameLength {
		return nil, apperror.ValidationFailed("groupName",
			fmt.Sprintf("group name must be %d characters or fewer", MaxGroupNameLength))
	}
	if group.MaxMembers == 0 {
		group.MaxMembers = DefaultMaxMembers
	}
	if group.MaxMembers < 2 || group.MaxMembers > MaxMaxMembers {
		return nil, apperror.ValidationFailed("maxMembers",
			fmt.Sprintf("maxMembers must be between 2 and %d", MaxMaxMembers))
	}

	group.OwnerID = ownerID
	group.InviteCode = xid.New().String()

	if err := s.groups.Create(ctx, group); err != nil {
		return nil, fmt.Errorf("service/group: creating group: %w", err)
	}

	s.logger.Info("group created",
		slog.Int64("groupID", group.GroupID),
		slog.Int64("ownerID", ownerID),
	)
	return group, nil
}

// ListPublic returns the public group directory.
func (s *GroupService) ListPublic(ctx context.Context, opts repository.ListOptions) ([]model.Group, error) {
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	groups, err := s.groups.ListPublic(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("service/group: listing public groups: %w", err)
	}
	return groups, nil
}

// Get returns one group by ID.
func (s *GroupService) Get(ctx context.Context, groupID int64) (*model.Group, error) {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("service/group: fetching group %d: %w", groupID, err)
	}
	return group, nil
}

// Join adds the caller to the group behind an invite code.
//
// The capacity check here is advisory — under concurrent joins the group
// can briefly exceed MaxMembers by the number of racing requests. The
// membership UNIQUE constraint, by contrast, is hard: joining twice is
// always a conflict.
func (s *GroupService) Join(ctx context.Context, userID int64, inviteCode string) (*model.Group, error) {
	inviteCode = strings.TrimSpace(inviteCode)
	if inviteCode == "" {
		return nil, apperror.ValidationFailed("inviteCode", "invite code is required")
	}

	group, err := s.groups.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, fmt.Errorf("service/group: resolving invite code: %w", err)
	}

	count, err := s.groups.CountMembers(ctx, group.GroupID)
	if err != nil {
		return nil, fmt.Errorf("service/group: counting members: %w", err)
	}
	if count >= group.MaxMembers {
		return nil, apperror.Conflict("group is full")
	}

	member := &model.GroupMember{
		GroupID: group.GroupID,
		UserID:  userID,
		Role:    model.GroupRoleMember,
	}
	if err := s.groups.AddMember(ctx, member); err != nil {
		return nil, fmt.Errorf("service/group: joining group %d: %w", group.GroupID, err)
	}

	s.logger.Info("user joined group",
		slog.Int64("groupID", group.GroupID),
		slog.Int64("userID", userID),
	)
	return group, nil
}

// Leave removes the caller from a group. The owner cannot leave — they
// would orphan the group; deleting or transferring it is a different
// operation.
func (s *GroupService) Leave(ctx context.Context, userID, groupID int64) error {
	group, err := s.groups.GetByID(ctx, groupID)
	if err != nil {
		return fmt.Errorf("service/group: fetching group %d: %w", groupID, err)
	}

	if group.OwnerID == userID {
		return apperror.Forbidden("the group owner cannot leave the group")
	}

	if err := s.groups.RemoveMember(ctx, groupID, userID); err != nil {
		return fmt.Errorf("service/group: leaving group %d: %w", groupID, err)
	}
	return nil
}

// Members lists a group's members with nicknames.
func (s *GroupService) Members(ctx context.Context, groupID int64) ([]model.GroupMember, error) {
	if _, err := s.groups.GetByID(ctx, groupID); err != nil {
		return nil, fmt.Errorf("service/group: fetching group %d: %w", groupID, err)
	}

	members, err := s.groups.ListMembers(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("service/group: listing members of %d: %w", groupID, err)
	}
	return members, nil
}
