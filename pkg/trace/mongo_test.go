package trace

import (
	"context"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

func TestNewMongoStoreBadURI(t *testing.T) {
	if _, err := NewMongoStore(context.Background(), MongoConfig{URI: "redis://localhost"}); err == nil {
		t.Error("expected error for non-mongodb URI")
	}
}

func TestNewMongoStoreUnreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := NewMongoStore(ctx, MongoConfig{
		URI:     "mongodb://127.0.0.1:1/?serverSelectionTimeoutMS=100",
		Timeout: 100 * time.Millisecond,
	})
	if err == nil {
		t.Fatal("expected error for unreachable server")
	}
}

func TestRefFilter(t *testing.T) {
	f := refFilter("wave")
	or, ok := f["$or"]
	if !ok {
		t.Fatalf("filter = %v, want $or", f)
	}
	if n := len(or.(bson.A)); n != 2 {
		t.Errorf("$or has %d clauses, want 2", n)
	}
}
