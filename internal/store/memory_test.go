package store

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/dkarger/felt/internal/catalog"
	"github.com/dkarger/felt/internal/game"
)

func TestMemoryStore(t *testing.T) {
	data, err := catalog.Load("")
	if err != nil {
		t.Fatalf("load balance: %v", err)
	}
	e := game.New(data, nil, game.NewEmitter(zerolog.Nop()), zerolog.Nop())

	s := NewMemoryStore()
	ctx := context.Background()

	if _, err := s.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get missing: %v", err)
	}
	if err := s.Save(ctx, "run-1", e); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := s.Get(ctx, "run-1")
	if err != nil || got != e {
		t.Fatalf("get: %v %v", got, err)
	}
	if err := s.Delete(ctx, "run-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.Get(ctx, "run-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("get after delete: %v", err)
	}
}
