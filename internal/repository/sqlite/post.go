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

var _ repository.PostRepository = (*PostDB)(nil)

// PostDB is the board slice of the store: posts, comments, likes.
type PostDB struct {
	conn *sql.DB
}

// Posts returns the board repository view of the store.
func (db *DB) Posts() *PostDB {
	return &PostDB{conn: db.conn}
}

func (p *PostDB) Create(ctx context.Context, post *model.Post) error {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := p.conn.ExecContext(ctx,
		`INSERT INTO posts (user_id, title, content, category, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		post.UserID,
		post.Title,
		post.Content,
		post.Category,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting post: %w", err)
	}

	post.PostID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new post id: %w", err)
	}
	return nil
}

func (p *PostDB) GetByID(ctx context.Context, postID int64) (*model.Post, error) {
	var post model.Post
	err := p.conn.QueryRowContext(ctx,
		`SELECT p.post_id, p.user_id, p.title, p.content, p.category, p.view_count, p.like_count,
		        p.created_at, p.updated_at, u.nickname
		 FROM posts p
		 JOIN users u ON u.user_id = p.user_id
		 WHERE p.post_id = ?`, postID,
	).Scan(
		&post.PostID,
		&post.UserID,
		&post.Title,
		&post.Content,
		&post.Category,
		&post.ViewCount,
		&post.LikeCount,
		&post.CreatedAt,
		&post.UpdatedAt,
		&post.AuthorNickname,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("post", fmt.Sprint(postID))
		}
		return nil, fmt.Errorf("sqlite: getting post %d: %w", postID, err)
	}
	return &post, nil
}

func (p *PostDB) IncrementViews(ctx context.Context, postID int64) error {
	_, err := p.conn.ExecContext(ctx,
		`UPDATE posts SET view_count = view_count + 1 WHERE post_id = ?`, postID)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing views of post %d: %w", postID, err)
	}
	return nil
}

// List returns posts newest-first, optionally filtered by category.
func (p *PostDB) List(ctx context.Context, category string, opts repository.ListOptions) ([]model.Post, error) {
	query := `SELECT p.post_id, p.user_id, p.title, p.content, p.category, p.view_count, p.like_count,
		       p.created_at, p.updated_at, u.nickname
		FROM posts p
		JOIN users u ON u.user_id = p.user_id`
	args := []any{}

	if category != "" {
		query += ` WHERE p.category = ?`
		args = append(args, category)
	}

	query += ` ORDER BY p.created_at DESC, p.post_id DESC LIMIT ? OFFSET ?`
	args = append(args, opts.Limit, opts.Offset)

	rows, err := p.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing posts: %w", err)
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var post model.Post
		if err := rows.Scan(
			&post.PostID,
			&post.UserID,
			&post.Title,
			&post.Content,
			&post.Category,
			&post.ViewCount,
			&post.LikeCount,
			&post.CreatedAt,
			&post.UpdatedAt,
			&post.AuthorNickname,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating posts: %w", err)
	}
	return posts, nil
}

func (p *PostDB) Delete(ctx context.Context, postID int64) error {
	res, err := p.conn.ExecContext(ctx, `DELETE FROM posts WHERE post_id = ?`, postID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting post %d: %w", postID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of post %d: %w", postID, err)
	}
	if affected == 0 {
		return apperror.NotFound("post", fmt.Sprint(postID))
	}
	return nil
}

func (p *PostDB) AddComment(ctx context.Context, comment *model.Comment) error {
	now := time.Now().UTC()
	comment.CreatedAt = now
	comment.UpdatedAt = now

	res, err := p.conn.ExecContext(ctx,
		`INSERT INTO comments (post_id, user_id, parent_comment_id, content, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		comment.PostID,
		comment.UserID,
		comment.ParentCommentID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: inserting comment on post %d: %w", comment.PostID, err)
	}

	comment.CommentID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading new comment id: %w", err)
	}
	return nil
}

func (p *PostDB) GetComment(ctx context.Context, commentID int64) (*model.Comment, error) {
	var c model.Comment
	var parent sql.NullInt64

	err := p.conn.QueryRowContext(ctx,
		`SELECT c.comment_id, c.post_id, c.user_id, c.parent_comment_id, c.content, c.like_count,
		        c.created_at, c.updated_at, u.nickname
		 FROM comments c
		 JOIN users u ON u.user_id = c.user_id
		 WHERE c.comment_id = ?`, commentID,
	).Scan(
		&c.CommentID,
		&c.PostID,
		&c.UserID,
		&parent,
		&c.Content,
		&c.LikeCount,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.AuthorNickname,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("comment", fmt.Sprint(commentID))
		}
		return nil, fmt.Errorf("sqlite: getting comment %d: %w", commentID, err)
	}

	if parent.Valid {
		c.ParentCommentID = &parent.Int64
	}
	return &c, nil
}

func (p *PostDB) ListComments(ctx context.Context, postID int64) ([]model.Comment, error) {
	rows, err := p.conn.QueryContext(ctx,
		`SELECT c.comment_id, c.post_id, c.user_id, c.parent_comment_id, c.content, c.like_count,
		        c.created_at, c.updated_at, u.nickname
		 FROM comments c
		 JOIN users u ON u.user_id = c.user_id
		 WHERE c.post_id = ?
		 ORDER BY c.comment_id`, postID)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing comments of post %d: %w", postID, err)
	}
	defer rows.Close()

	comments := []model.Comment{}
	for rows.Next() {
		var c model.Comment
		var parent sql.NullInt64
		if err := rows.Scan(
			&c.CommentID,
			&c.PostID,
			&c.UserID,
			&parent,
			&c.Content,
			&c.LikeCount,
			&c.CreatedAt,
			&c.UpdatedAt,
			&c.AuthorNickname,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning comment: %w", err)
		}
		if parent.Valid {
			c.ParentCommentID = &parent.Int64
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating comments: %w", err)
	}
	return comments, nil
}

func (p *PostDB) DeleteComment(ctx context.Context, commentID int64) error {
	res, err := p.conn.ExecContext(ctx, `DELETE FROM comments WHERE comment_id = ?`, commentID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting comment %d: %w", commentID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking delete of comment %d: %w", commentID, err)
	}
	if affected == 0 {
		return apperror.NotFound("comment", fmt.Sprint(commentID))
	}
	return nil
}

// Like records a like and bumps the denormalised counter in the same
// transaction. Liking twice trips UNIQUE(post_id, user_id) and surfaces
// as a conflict, leaving the counter untouched.
func (p *PostDB) Like(ctx context.Context, postID, userID int64) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning like: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
		postID, userID, time.Now().UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return apperror.Conflict("post already liked")
		}
		return fmt.Errorf("sqlite: inserting like on post %d: %w", postID, err)
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE posts SET like_count = like_count + 1 WHERE post_id = ?`, postID)
	if err != nil {
		return fmt.Errorf("sqlite: incrementing like count of post %d: %w", postID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking like count update: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("post", fmt.Sprint(postID))
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing like: %w", err)
	}
	return nil
}

func (p *PostDB) Unlike(ctx context.Context, postID, userID int64) error {
	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning unlike: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`, postID, userID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting like on post %d: %w", postID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking like delete: %w", err)
	}
	if affected == 0 {
		return apperror.NotFound("like", fmt.Sprint(postID))
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE posts SET like_count = like_count - 1 WHERE post_id = ? AND like_count > 0`, postID)
	if err != nil {
		return fmt.Errorf("sqlite: decrementing like count of post %d: %w", postID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing unlike: %w", err)
	}
	return nil
}
