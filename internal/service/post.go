package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
	"github.com/performproject/backend/internal/repository"
)

const (
	MaxPostTitleLength = 300
	MaxPostBodyLength  = 50000
	MaxCommentLength   = 5000
)

var validCategories = map[string]bool{
	model.PostCategoryGeneral:  true,
	model.PostCategoryTip:      true,
	model.PostCategoryQuestion: true,
	model.PostCategoryFree:     true,
}

// PostService handles the community board: posts, comments, and likes.
type PostService struct {
	posts  repository.PostRepository
	logger *slog.Logger
}

func NewPostService(posts repository.PostRepository, logger *slog.Logger) *PostService {
	return &PostService{posts: posts, logger: logger}
}

// CreatePost validates and stores a post for the caller.
func (s *PostService) CreatePost(ctx context.Context, userID int64, post *model.Post) (*model.Post, error) {
	if post == nil {
		return nil, apperror.ValidationFailed("post", "post body is required")
	}
	post.Title = strings.TrimSpace(post.Title)
	post.Content = strings.TrimSpace(post.Content)

	if post.Title == "" {
		return nil, apperror.ValidationFailed("title", "title is required")
	}
	if len(post.Title) > MaxPostTitleLength {
		return nil, apperror.ValidationFailed("title",
			fmt.Sprintf("title must be %d characters or fewer", MaxPostTitleLength))
	}
	if post.Content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(post.Content) > MaxPostBodyLength {
		return nil, apperror.ValidationFailed("content", "content is too long")
	}
	if post.Category == "" {
		post.Category = model.PostCategoryGeneral
	}
	if !validCategories[post.Category] {
		return nil, apperror.ValidationFailed("category", "unknown category")
	}

	post.UserID = userID
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("service/post: creating post: %w", err)
	}

	s.logger.Info("post created",
		slog.Int64("postID", post.PostID),
		slog.Int64("userID", userID),
		slog.String("category", post.Category),
	)
	return post, nil
}

// ListPosts returns posts newest-first, optionally filtered by category.
func (s *PostService) ListPosts(ctx context.Context, category string, opts repository.ListOptions) ([]model.Post, error) {
	if category != "" && !validCategories[category] {
		return nil, apperror.ValidationFailed("category", "unknown category")
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultListLimit
	}
	if opts.Limit > MaxListLimit {
		opts.Limit = MaxListLimit
	}
	if opts.Offset < 0 {
		opts.Offset = 0
	}

	posts, err := s.posts.List(ctx, category, opts)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing posts: %w", err)
	}
	return posts, nil
}

// GetPost returns one post and counts the view. The increment-then-read
// order means the count in the response includes this view.
func (s *PostService) GetPost(ctx context.Context, postID int64) (*model.Post, error) {
	if err := s.posts.IncrementViews(ctx, postID); err != nil {
		return nil, fmt.Errorf("service/post: counting view of %d: %w", postID, err)
	}
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/post: fetching post %d: %w", postID, err)
	}
	return post, nil
}

// DeletePost removes the caller's own post.
func (s *PostService) DeletePost(ctx context.Context, userID, postID int64) error {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return fmt.Errorf("service/post: fetching post %d: %w", postID, err)
	}
	if post.UserID != userID {
		return apperror.Forbidden("only the author can delete a post")
	}

	if err := s.posts.Delete(ctx, postID); err != nil {
		return fmt.Errorf("service/post: deleting post %d: %w", postID, err)
	}
	return nil
}

// AddComment validates and stores a comment. A reply's parent must be a
// comment on the same post.
func (s *PostService) AddComment(ctx context.Context, userID, postID int64, comment *model.Comment) (*model.Comment, error) {
	if comment == nil {
		return nil, apperror.ValidationFailed("comment", "comment body is required")
	}
	comment.Content = strings.TrimSpace(comment.Content)
	if comment.Content == "" {
		return nil, apperror.ValidationFailed("content", "content is required")
	}
	if len(comment.Content) > MaxCommentLength {
		return nil, apperror.ValidationFailed("content", "comment is too long")
	}

	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("service/post: fetching post %d: %w", postID, err)
	}

	if comment.ParentCommentID != nil {
		parent, err := s.posts.GetComment(ctx, *comment.ParentCommentID)
		if err != nil {
			return nil, fmt.Errorf("service/post: fetching parent comment: %w", err)
		}
		if parent.PostID != postID {
			return nil, apperror.ValidationFailed("parentCommentId", "parent comment belongs to a different post")
		}
	}

	comment.UserID = userID
	comment.PostID = postID
	if err := s.posts.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("service/post: adding comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a post's comments oldest-first.
func (s *PostService) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return nil, fmt.Errorf("service/post: fetching post %d: %w", postID, err)
	}

	comments, err := s.posts.ListComments(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("service/post: listing comments of %d: %w", postID, err)
	}
	return comments, nil
}

// DeleteComment removes the caller's own comment.
func (s *PostService) DeleteComment(ctx context.Context, userID, commentID int64) error {
	comment, err := s.posts.GetComment(ctx, commentID)
	if err != nil {
		return fmt.Errorf("service/post: fetching comment %d: %w", commentID, err)
	}
	if comment.UserID != userID {
		return apperror.Forbidden("only the author can delete a comment")
	}

	if err := s.posts.DeleteComment(ctx, commentID); err != nil {
		return fmt.Errorf("service/post: deleting comment %d: %w", commentID, err)
	}
	return nil
}

// LikePost records the caller's like. Liking twice is a conflict.
func (s *PostService) LikePost(ctx context.Context, userID, postID int64) error {
	if _, err := s.posts.GetByID(ctx, postID); err != nil {
		return fmt.Errorf("service/post: fetching post %d: %w", postID, err)
	}
	if err := s.posts.Like(ctx, postID, userID); err != nil {
		return fmt.Errorf("service/post: liking post %d: %w", postID, err)
	}
	return nil
}

// UnlikePost removes the caller's like. Unliking a post that wasn't liked
// is a not-found.
func (s *PostService) UnlikePost(ctx context.Context, userID, postID int64) error {
	if err := s.posts.Unlike(ctx, postID, userID); err != nil {
		return fmt.Errorf("service/post: unliking post %d: %w", postID, err)
	}
	return nil
}
