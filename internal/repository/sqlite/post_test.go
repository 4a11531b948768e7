package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/performproject/backend/internal/apperror"
	"github.com/performproject/backend/internal/model"
)

func createTestPost(t *testing.T, db *DB, userID int64, title string) *model.Post {
	t.Helper()
	post := &model.Post{
		UserID:   userID,
		Title:    title,
		Content:  "some content",
		Category: model.PostCategoryGeneral,
	}
	if err := db.Posts().Create(context.Background(), post); err != nil {
		t.Fatalf("failed to create test post: %v", err)
	}
	return post
}

// =========================================================================
// POST TESTS
// =========================================================================

func TestPostGetByID_JoinsAuthorNickname(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "wordsmith")
	post := createTestPost(t, db, author.UserID, "My first gig")

	got, err := db.Posts().GetByID(context.Background(), post.PostID)
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if got.AuthorNickname != "wordsmith" {
		t.Errorf("AuthorNickname = %q, want %q", got.AuthorNickname, "wordsmith")
	}
}

func TestPostIncrementViews(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "wordsmith")
	post := createTestPost(t, db, author.UserID, "My first gig")

	for i := 0; i < 3; i++ {
		if err := db.Posts().IncrementViews(context.Background(), post.PostID); err != nil {
			t.Fatalf("IncrementViews() error = %v", err)
		}
	}

	got, _ := db.Posts().GetByID(context.Background(), post.PostID)
	if got.ViewCount != 3 {
		t.Errorf("ViewCount = %d, want 3", got.ViewCount)
	}
}

func TestPostList_FiltersByCategory(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "wordsmith")

	createTestPost(t, db, author.UserID, "general one")
	tip := &model.Post{UserID: author.UserID, Title: "tune daily", Content: "really", Category: model.PostCategoryTip}
	if err := db.Posts().Create(context.Background(), tip); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	posts, err := db.Posts().List(context.Background(), model.PostCategoryTip, listAll())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(posts) != 1 || posts[0].Category != model.PostCategoryTip {
		t.Errorf("List(tip) = %+v, want exactly the tip post", posts)
	}
}

// =========================================================================
// LIKE TESTS
// =========================================================================

func TestPostLike_CountStaysInSync(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "wordsmith")
	fan := createTestUser(t, db, "fan@example.com", "fan")
	post := createTestPost(t, db, author.UserID, "My first gig")

	if err := db.Posts().Like(context.Background(), post.PostID, fan.UserID); err != nil {
		t.Fatalf("Like() error = %v", err)
	}

	got, _ := db.Posts().GetByID(context.Background(), post.PostID)
	if got.LikeCount != 1 {
		t.Errorf("LikeCount after like = %d, want 1", got.LikeCount)
	}

	// Liking twice must conflict and leave the counter untouched
	err := db.Posts().Like(context.Background(), post.PostID, fan.UserID)
	if !errors.Is(err, apperror.ErrConflict) {
		t.Fatalf("second Like() error = %v, want ErrConflict", err)
	}
	got, _ = db.Posts().GetByID(context.Background(), post.PostID)
	if got.LikeCount != 1 {
		t.Errorf("LikeCount after duplicate like = %d, want 1", got.LikeCount)
	}

	if err := db.Posts().Unlike(context.Background(), post.PostID, fan.UserID); err != nil {
		t.Fatalf("Unlike() error = %v", err)
	}
	got, _ = db.Posts().GetByID(context.Background(), post.PostID)
	if got.LikeCount != 0 {
		t.Errorf("LikeCount after unlike = %d, want 0", got.LikeCount)
	}
}

func TestPostUnlike_WithoutLike(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "wordsmith")
	post := createTestPost(t, db, author.UserID, "My first gig")

	err := db.Posts().Unlike(context.Background(), post.PostID, author.UserID)
	if !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("Unlike() without a like: error = %v, want ErrNotFound", err)
	}
}

// =========================================================================
// COMMENT TESTS
// =========================================================================

func TestPostComments_RoundTrip(t *testing.T) {
	db := newTestDB(t)
	author := createTestUser(t, db, "author@example.com", "wordsmith")
	post := createTestPost(t, db, author.UserID, "My first gig")

	comment := &model.Comment{PostID: post.PostID, UserID: author.UserID, Content: "great show"}
	if err := db.Posts().AddComment(context.Background(), comment); err != nil {
		t.Fatalf("AddComment() error = %v", err)
	}
	if comment.CommentID == 0 {
		t.Fatal("AddComment() did not set CommentID")
	}

	reply := &model.Comment{
		PostID:          post.PostID,
		UserID:          author.UserID,
		ParentCommentID: &comment.CommentID,
		Content:         "thanks!",
	}
	if err := db.Posts().AddComment(context.Background(), reply); err != nil {
		t.Fatalf("AddComment() reply error = %v", err)
	}

	comments, err := db.Posts().ListComments(context.Background(), post.PostID)
	if err != nil {
		t.Fatalf("ListComments() error = %v", err)
	}
	if len(comments) != 2 {
		t.Fatalf("ListComments() returned %d comments, want 2", len(comments))
	}

	// Find the reply and verify its parent survived the round trip
	var foundReply bool
	for _, c := range comments {
		if c.ParentCommentID != nil && *c.ParentCommentID == comment.CommentID {
			foundReply = true
		}
	}
	if !foundReply {
		t.Error("ListComments() lost the reply's parent comment id")
	}
}
