package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"signalpost/internal/domain"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestSessionCreate(t *testing.T) {
	st, mock, _ := newStoreWithMock(t)

	sess := &domain.Session{
		Token:     "opaque-token",
		UserID:    uuid.New(),
		ExpiresAt: time.Now().UTC().Add(30 * 24 * time.Hour),
		CreatedAt: time.Now().UTC(),
		IP:        "203.0.113.9",
		UserAgent: "test-agent",
	}
	mock.ExpectExec(`INSERT INTO "sessions"`).
		WithArgs(sess.Token, sess.UserID, sess.ExpiresAt, sess.CreatedAt, sess.IP, sess.UserAgent).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := st.Sessions().Create(context.Background(), sess); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestSessionGetWithUser(t *testing.T) {
	st, mock, _ := newStoreWithMock(t)

	userID := uuid.New()
	now := time.Now().UTC()
	expires := now.Add(24 * time.Hour)

	mock.ExpectQuery(`SELECT \* FROM "sessions" WHERE token = \$1 AND expires_at > \$2`).
		WithArgs("opaque-token", now, 1).
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at", "ip", "user_agent"}).
			AddRow("opaque-token", userID, expires, now.Add(-time.Hour), "203.0.113.9", "test-agent"))

	mock.ExpectQuery(`SELECT \* FROM "users" WHERE id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "password_hash", "email_verified"}).
			AddRow(userID, "a@x.com", "digest", true))

	sess, user, err := st.Sessions().GetWithUser(context.Background(), "opaque-token", now)
	if err != nil {
		t.Fatalf("GetWithUser: %v", err)
	}
	if sess.Token != "opaque-token" || sess.UserID != userID {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if user.Email != "a@x.com" || !user.EmailVerified {
		t.Fatalf("unexpected user: %+v", user)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

// An expired row does not satisfy the expires_at predicate, so the lookup is
// a plain not-found.
func TestSessionGetWithUserNotFound(t *testing.T) {
	st, mock, _ := newStoreWithMock(t)

	now := time.Now().UTC()
	mock.ExpectQuery(`SELECT \* FROM "sessions"`).
		WillReturnRows(sqlmock.NewRows([]string{"token", "user_id", "expires_at", "created_at", "ip", "user_agent"}))

	_, _, err := st.Sessions().GetWithUser(context.Background(), "gone", now)
	if !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("want ErrRecordNotFound, got %v", err)
	}
}

func TestSessionDeleteAllForUser(t *testing.T) {
	st, mock, _ := newStoreWithMock(t)

	userID := uuid.New()
	mock.ExpectExec(`DELETE FROM "sessions" WHERE user_id = \$1`).
		WithArgs(userID).
		WillReturnResult(sqlmock.NewResult(0, 3))

	n, err := st.Sessions().DeleteAllForUser(context.Background(), userID)
	if err != nil {
		t.Fatalf("DeleteAllForUser: %v", err)
	}
	if n != 3 {
		t.Fatalf("rows affected = %d, want 3", n)
	}
}

func TestSessionDeleteExpired(t *testing.T) {
	st, mock, _ := newStoreWithMock(t)

	now := time.Now().UTC()
	mock.ExpectExec(`DELETE FROM "sessions" WHERE expires_at <= \$1`).
		WithArgs(now).
		WillReturnResult(sqlmock.NewResult(0, 7))

	n, err := st.Sessions().DeleteExpired(context.Background(), now)
	if err != nil {
		t.Fatalf("DeleteExpired: %v", err)
	}
	if n != 7 {
		t.Fatalf("rows affected = %d, want 7", n)
	}
}
