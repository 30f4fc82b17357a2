package repository

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"socialfeed/internal/model"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return sqlx.NewDb(db, "sqlmock"), mock
}

func TestPostLikeRepository_TargetIgnoresUnpublished(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostLikeRepository(db)

	// The target check tests the published flag, not bare existence
	mock.ExpectQuery(`SELECT EXISTS\(SELECT 1 FROM posts WHERE id = \$1 AND published\)`).
		WithArgs(int64(10)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	exists, err := repo.TargetExists(context.Background(), 10)
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if exists {
		t.Error("unpublished post must not be a valid like target")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLikeSetRepositories_UseSeparateTables(t *testing.T) {
	db, mock := newMockDB(t)
	postLikes := NewPostLikeRepository(db)
	commentLikes := NewCommentLikeRepository(db)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM post_likes WHERE post_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM comment_likes WHERE comment_id = \$1`).
		WithArgs(int64(1)).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(5))

	postCount, err := postLikes.Count(context.Background(), 1)
	if err != nil {
		t.Fatalf("post count: %v", err)
	}
	commentCount, err := commentLikes.Count(context.Background(), 1)
	if err != nil {
		t.Fatalf("comment count: %v", err)
	}

	if postCount != 2 || commentCount != 5 {
		t.Errorf("counts = %d/%d, want 2/5", postCount, commentCount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLikeSetRepository_AddIsIdempotentInsert(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostLikeRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO post_likes \(post_id, user_id\) VALUES \(\$1, \$2\) ON CONFLICT DO NOTHING`).
		WithArgs(int64(10), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	tx, err := db.Beginx()
	if err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := repo.Add(context.Background(), tx, 10, 1); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := tx.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLikeSetRepository_NotFoundSentinels(t *testing.T) {
	db, _ := newMockDB(t)

	if NewPostLikeRepository(db).NotFoundErr() != model.ErrPostNotFound {
		t.Error("post like set must surface ErrPostNotFound")
	}
	if NewCommentLikeRepository(db).NotFoundErr() != model.ErrCommentNotFound {
		t.Error("comment like set must surface ErrCommentNotFound")
	}
}
