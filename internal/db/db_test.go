package db_test

import (
	"context"
	"testing"

	"jobmate/board-client/internal/db"
)

func TestNewPostgresPool_BadURL(t *testing.T) {
	if _, err := db.NewPostgresPool(context.Background(), "::not a url::"); err == nil {
		t.Error("expected parse error")
	}
}

func TestNewRedisClient_BadURL(t *testing.T) {
	if _, err := db.NewRedisClient(context.Background(), "http://localhost"); err == nil {
		t.Error("expected parse error for non-redis scheme")
	}
}
