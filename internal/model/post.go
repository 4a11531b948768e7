package model

import "time"

// Post categories. "general" is the default when none is given.
const (
	PostCategoryGeneral  = "general"
	PostCategoryTip      = "tip"
	PostCategoryQuestion = "question"
	PostCategoryFree     = "free"
)

// Post is a board post.
//
// LikeCount is denormalised — it is updated in the same transaction as the
// post_likes row so the two cannot drift. ViewCount is incremented on every
// read of the post detail.
type Post struct {
	PostID    int64     `json:"postId"    db:"post_id"`
	UserID    int64     `json:"userId"    db:"user_id"`
	Title     string    `json:"title"     db:"title"`
	Content   string    `json:"content"   db:"content"`
	Category  string    `json:"category"  db:"category"`
	ViewCount int       `json:"viewCount" db:"view_count"`
	LikeCount int       `json:"likeCount" db:"like_count"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`

	// AuthorNickname is joined in from the users table for listings.
	AuthorNickname string `json:"authorNickname" db:"author_nickname"`
}

// Comment is a comment on a post. ParentCommentID is set for replies.
type Comment struct {
	CommentID       int64     `json:"commentId"       db:"comment_id"`
	PostID          int64     `json:"postId"          db:"post_id"`
	UserID          int64     `json:"userId"          db:"user_id"`
	ParentCommentID *int64    `json:"parentCommentId" db:"parent_comment_id"`
	Content         string    `json:"content"         db:"content"`
	LikeCount       int       `json:"likeCount"       db:"like_count"`
	CreatedAt       time.Time `json:"createdAt"       db:"created_at"`
	UpdatedAt       time.Time `json:"updatedAt"       db:"updated_at"`

	AuthorNickname string `json:"authorNickname" db:"author_nickname"`
}
