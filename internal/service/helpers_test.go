package service

import (
	"context"
	"sync"
	"testing"

	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/repo"
	"github.com/Skotchmaster/storefront/internal/testutil"
)

type eventRecorder struct {
	mu     sync.Mutex
	topics []string
	events []map[string]any
}

func (r *eventRecorder) PublishEvent(_ context.Context, topic, _ string, event any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.topics = append(r.topics, topic)
	if m, ok := event.(map[string]any); ok {
		r.events = append(r.events, m)
	}
	return nil
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e["type"].(string))
	}
	return out
}

type orderEnv struct {
	DB     *gorm.DB
	Repo   *repo.GormRepo
	Svc    *OrderService
	Events *eventRecorder
}

func newOrderEnv(t *testing.T) *orderEnv {
	t.Helper()

	db := testutil.NewDB(t)
	r := &repo.GormRepo{DB: db}
	rec := &eventRecorder{}
	return &orderEnv{
		DB:     db,
		Repo:   r,
		Events: rec,
		Svc: &OrderService{
			Repo:     r,
			Statuses: &StatusResolver{Repo: r},
			Events:   rec,
		},
	}
}

var (
	customer = Caller{UserID: 42, Role: "customer"}
	stranger = Caller{UserID: 77, Role: "customer"}
	admin    = Caller{UserID: 1, Role: "admin"}
)
