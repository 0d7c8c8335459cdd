package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"lentera-hq/gateway/pkg/gateway"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()

	storage, err := NewStorage(&StorageConfig{
		Path: filepath.Join(t.TempDir(), "audit.db"),
	})
	if err != nil {
		t.Fatalf("NewStorage() error = %v", err)
	}
	t.Cleanup(func() { storage.Close() })
	return storage
}

func TestInsertAndRecent(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	entries := []*gateway.AuditEntry{
		{RequestID: "req-1", Endpoint: "order-list", Upstream: "backend", Method: "GET", Path: "/api/admin/order", Status: 200, Latency: 120 * time.Millisecond, At: time.Now().Add(-2 * time.Minute)},
		{RequestID: "req-2", Endpoint: "shipping-cost", Upstream: "shipping_v2", Method: "POST", Path: "/api/shipping/cost", Status: 504, Code: "TIMEOUT", Latency: 5 * time.Second, At: time.Now()},
	}
	for _, entry := range entries {
		if err := storage.Insert(ctx, entry); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	recent, err := storage.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("len(recent) = %d, want 2", len(recent))
	}
	if recent[0].RequestID != "req-2" {
		t.Errorf("newest first: got %q, want req-2", recent[0].RequestID)
	}
	if recent[0].Code != "TIMEOUT" || recent[0].Status != 504 {
		t.Errorf("entry round trip = %+v", recent[0])
	}
	if recent[0].Latency != 5*time.Second {
		t.Errorf("latency = %v, want 5s", recent[0].Latency)
	}
}

func TestInsertDefaultsTimestamp(t *testing.T) {
	storage := newTestStorage(t)

	if err := storage.Insert(context.Background(), &gateway.AuditEntry{
		RequestID: "req-1", Endpoint: "order-list", Upstream: "backend", Method: "GET", Path: "/", Status: 200,
	}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	recent, err := storage.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if recent[0].At.IsZero() {
		t.Error("recorded_at not defaulted")
	}
}

func TestDeleteOlderThan(t *testing.T) {
	storage := newTestStorage(t)
	ctx := context.Background()

	old := &gateway.AuditEntry{RequestID: "old", Endpoint: "e", Upstream: "u", Method: "GET", Path: "/", Status: 200, At: time.Now().AddDate(0, 0, -100)}
	fresh := &gateway.AuditEntry{RequestID: "fresh", Endpoint: "e", Upstream: "u", Method: "GET", Path: "/", Status: 200, At: time.Now()}
	for _, entry := range []*gateway.AuditEntry{old, fresh} {
		if err := storage.Insert(ctx, entry); err != nil {
			t.Fatalf("Insert() error = %v", err)
		}
	}

	deleted, err := storage.DeleteOlderThan(ctx, time.Now().AddDate(0, 0, -90))
	if err != nil {
		t.Fatalf("DeleteOlderThan() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	count, err := storage.Count(ctx)
	if err != nil {
		t.Fatalf("Count() error = %v", err)
	}
	if count != 1 {
		t.Errorf("count = %d, want 1", count)
	}
}

func TestStorageRejectsEmptyPath(t *testing.T) {
	if _, err := NewStorage(&StorageConfig{}); err == nil {
		t.Error("NewStorage() accepted empty path")
	}
}
