package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/launchforge/launchforge/internal/user/domain"
	userrepo "github.com/launchforge/launchforge/internal/user/repository"
	userservice "github.com/launchforge/launchforge/internal/user/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func TestUpsertCreatesUser(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	user, err := svc.Upsert(ctx, domain.Profile{
		ExternalID: "user_2abc",
		Username:   "jdoe",
		Email:      "jdoe@example.com",
		FullName:   "Jane Doe",
		AvatarURL:  "https://img.example.com/jdoe.png",
	})
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}
	if user.ID == 0 {
		t.Fatalf("expected generated id")
	}
	if user.ExternalID != "user_2abc" {
		t.Fatalf("expected external id user_2abc, got %s", user.ExternalID)
	}
	if user.Email != "jdoe@example.com" {
		t.Fatalf("expected email jdoe@example.com, got %s", user.Email)
	}
}

func TestUpsertUpdatesExistingUser(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	svc := newTestService(t, db)

	first, err := svc.Upsert(ctx, domain.Profile{
		ExternalID: "user_2abc",
		Email:      "old@example.com",
		FullName:   "Jane Doe",
	})
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	second, err := svc.Upsert(ctx, domain.Profile{
		ExternalID: "user_2abc",
		Username:   "jane",
		Email:      "new@example.com",
		FullName:   "Jane A. Doe",
	})
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected stable id across upserts, got %d then %d", first.ID, second.ID)
	}
	if second.Email != "new@example.com" {
		t.Fatalf("expected updated email, got %s", second.Email)
	}
	if second.Username != "jane" {
		t.Fatalf("expected updated username, got %s", second.Username)
	}

	var count int64
	if err := db.Raw("SELECT COUNT(1) FROM users").Scan(&count).Error; err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected one user row, got %d", count)
	}
}

func TestUpsertValidatesProfile(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, setupTestDB(t))

	if _, err := svc.Upsert(ctx, domain.Profile{Email: "a@b.com"}); err != domain.ErrInvalidExternalID {
		t.Fatalf("expected invalid external id, got %v", err)
	}
	if _, err := svc.Upsert(ctx, domain.Profile{ExternalID: "user_1"}); err != domain.ErrInvalidEmail {
		t.Fatalf("expected invalid email for missing email, got %v", err)
	}
	if _, err := svc.Upsert(ctx, domain.Profile{ExternalID: "user_1", Email: "not-an-email"}); err != domain.ErrInvalidEmail {
		t.Fatalf("expected invalid email for malformed email, got %v", err)
	}
}

func newTestService(t *testing.T, db *gorm.DB) domain.Service {
	t.Helper()

	node, err := snowflake.NewNode(21)
	if err != nil {
		t.Fatalf("new node: %v", err)
	}
	return userservice.New(userservice.Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Repo:  userrepo.Provide(),
	})
}

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:memdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	schema := []string{
		`CREATE TABLE users (
			id BIGINT PRIMARY KEY,
			external_id TEXT NOT NULL,
			username TEXT,
			email TEXT NOT NULL,
			full_name TEXT,
			avatar_url TEXT,
			created_at DATETIME NOT NULL,
			updated_at DATETIME NOT NULL
		)`,
		`CREATE UNIQUE INDEX ux_users_external_id ON users(external_id)`,
	}
	for _, stmt := range schema {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create schema: %v", err)
		}
	}
	return db
}
