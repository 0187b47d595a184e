package announcement

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

var (
	admin    = lifecycle.Actor{ID: "adm-1", Role: lifecycle.RoleAdmin, Approved: true}
	resident = lifecycle.Actor{ID: "res-1", Role: lifecycle.RoleResident, Approved: true}
)

func TestBroadcastAdminOnly(t *testing.T) {
	svc := NewService(newFakeRepository())

	params := BroadcastParams{Title: "Water interruption", Content: "Mains off 9am-1pm on Saturday."}

	a, err := svc.Broadcast(context.Background(), admin, params)
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}
	if a.AdminID != admin.ID {
		t.Errorf("expected admin id stamped, got %q", a.AdminID)
	}

	if _, err := svc.Broadcast(context.Background(), resident, params); !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for resident, got %v", err)
	}
}

func TestBroadcastValidation(t *testing.T) {
	svc := NewService(newFakeRepository())

	if _, err := svc.Broadcast(context.Background(), admin, BroadcastParams{Title: "No body"}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation for missing content, got %v", err)
	}
}

func TestDeleteAdminOnly(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	a, err := svc.Broadcast(context.Background(), admin, BroadcastParams{Title: "Gate closure", Content: "North gate closed tonight."})
	if err != nil {
		t.Fatalf("broadcast: %v", err)
	}

	if err := svc.Delete(context.Background(), resident, a.ID); !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if err := svc.Delete(context.Background(), admin, a.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), admin, a.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on repeat delete, got %v", err)
	}
}

type fakeRepository struct {
	seq  int
	rows map[string]Announcement
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rows: make(map[string]Announcement)}
}

func (f *fakeRepository) Create(ctx context.Context, params BroadcastParams) (Announcement, error) {
	f.seq++
	a := Announcement{
		ID:        fmt.Sprintf("ann-%d", f.seq),
		AdminID:   params.AdminID,
		Title:     params.Title,
		Content:   params.Content,
		CreatedAt: time.Now(),
	}
	f.rows[a.ID] = a
	return a, nil
}

func (f *fakeRepository) List(ctx context.Context, limit int) ([]Announcement, error) {
	out := make([]Announcement, 0, len(f.rows))
	for _, a := range f.rows {
		out = append(out, a)
	}
	return out, nil
}

func (f *fakeRepository) Delete(ctx context.Context, id string) error {
	if _, ok := f.rows[id]; !ok {
		return ErrNotFound
	}
	delete(f.rows, id)
	return nil
}
