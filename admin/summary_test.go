package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/turisesng/village-link-app/lifecycle"
)

type fixedCounter int

func (f fixedCounter) CountPending(ctx context.Context) (int, error) {
	return int(f), nil
}

type failingCounter struct{ err error }

func (f failingCounter) CountPending(ctx context.Context) (int, error) {
	return 0, f.err
}

func TestSummaryAggregatesQueues(t *testing.T) {
	svc := NewService(fixedCounter(3), fixedCounter(7), fixedCounter(5), fixedCounter(2))

	admin := lifecycle.Actor{ID: "adm-1", Role: lifecycle.RoleAdmin, Approved: true}
	got, err := svc.Summary(context.Background(), admin)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	want := Summary{PendingOnboarding: 3, PendingPermits: 7, PendingJobs: 5, PendingDeliveries: 2}
	if got != want {
		t.Fatalf("unexpected summary %+v, want %+v", got, want)
	}
}

func TestSummaryAdminOnly(t *testing.T) {
	svc := NewService(fixedCounter(0), fixedCounter(0), fixedCounter(0), fixedCounter(0))

	resident := lifecycle.Actor{ID: "res-1", Role: lifecycle.RoleResident, Approved: true}
	if _, err := svc.Summary(context.Background(), resident); !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
}

func TestSummaryPropagatesErrors(t *testing.T) {
	boom := errors.New("db down")
	svc := NewService(fixedCounter(1), failingCounter{err: boom}, fixedCounter(1), fixedCounter(1))

	admin := lifecycle.Actor{ID: "adm-1", Role: lifecycle.RoleAdmin, Approved: true}
	if _, err := svc.Summary(context.Background(), admin); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped counter error, got %v", err)
	}
}
