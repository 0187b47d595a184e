package riders

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/turisesng/village-link-app/lifecycle"
)

func actorOf(id string, role lifecycle.Role) lifecycle.Actor {
	return lifecycle.Actor{ID: id, Role: role, Approved: true}
}

func deliveryParams() CreateParams {
	return CreateParams{
		RequesterName:    "Corner Shop",
		PickupLocation:   "Block C Store",
		DeliveryLocation: "14 Cedar Drive",
		Description:      "Two bags of groceries",
	}
}

func TestStoreCreatesAndRiderClaims(t *testing.T) {
	svc := NewService(&fakePool{}, newFakeRepository())

	req, err := svc.Create(context.Background(), actorOf("store-1", lifecycle.RoleStore), deliveryParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if req.Status != StatusPending || req.RiderID != nil {
		t.Fatalf("expected pending unassigned request, got %+v", req)
	}

	claimed, err := svc.Claim(context.Background(), actorOf("rid-1", lifecycle.RoleRider), req.ID)
	if err != nil {
		t.Fatalf("claim: %v", err)
	}
	if claimed.Status != StatusInProgress || claimed.RiderID == nil || *claimed.RiderID != "rid-1" {
		t.Fatalf("expected rid-1 in progress, got %+v", claimed)
	}

	done, err := svc.Complete(context.Background(), actorOf("rid-1", lifecycle.RoleRider), req.ID)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", done.Status)
	}
}

func TestOnlyRidersClaimDeliveries(t *testing.T) {
	svc := NewService(&fakePool{}, newFakeRepository())

	req, err := svc.Create(context.Background(), actorOf("res-1", lifecycle.RoleResident), deliveryParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := svc.Claim(context.Background(), actorOf("pro-1", lifecycle.RoleServiceProvider), req.ID); !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for provider, got %v", err)
	}

	unapproved := lifecycle.Actor{ID: "rid-2", Role: lifecycle.RoleRider}
	if _, err := svc.Claim(context.Background(), unapproved, req.ID); !errors.Is(err, lifecycle.ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
}

func TestSecondClaimLoses(t *testing.T) {
	svc := NewService(&fakePool{}, newFakeRepository())

	req, err := svc.Create(context.Background(), actorOf("store-1", lifecycle.RoleStore), deliveryParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Claim(context.Background(), actorOf("rid-1", lifecycle.RoleRider), req.ID); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	if _, err := svc.Claim(context.Background(), actorOf("rid-2", lifecycle.RoleRider), req.ID); !errors.Is(err, lifecycle.ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestCompleteRestrictedToAssignedRider(t *testing.T) {
	svc := NewService(&fakePool{}, newFakeRepository())

	req, err := svc.Create(context.Background(), actorOf("store-1", lifecycle.RoleStore), deliveryParams())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Claim(context.Background(), actorOf("rid-1", lifecycle.RoleRider), req.ID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if _, err := svc.Complete(context.Background(), actorOf("rid-2", lifecycle.RoleRider), req.ID); !errors.Is(err, lifecycle.ErrNotAssignedActor) {
		t.Fatalf("expected ErrNotAssignedActor, got %v", err)
	}
}

func TestCreateGuards(t *testing.T) {
	svc := NewService(&fakePool{}, newFakeRepository())

	if _, err := svc.Create(context.Background(), actorOf("rid-1", lifecycle.RoleRider), deliveryParams()); !errors.Is(err, lifecycle.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for rider creating delivery, got %v", err)
	}

	missing := deliveryParams()
	missing.PickupLocation = ""
	if _, err := svc.Create(context.Background(), actorOf("res-1", lifecycle.RoleResident), missing); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

type fakeRepository struct {
	seq      int
	requests map[string]Request
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{requests: make(map[string]Request)}
}

func (f *fakeRepository) Create(ctx context.Context, tx pgx.Tx, params CreateParams) (Request, error) {
	f.seq++
	now := time.Now()
	req := Request{
		ID:               fmt.Sprintf("del-%d", f.seq),
		RequesterID:      params.RequesterID,
		RequesterName:    params.RequesterName,
		PickupLocation:   params.PickupLocation,
		DeliveryLocation: params.DeliveryLocation,
		Description:      params.Description,
		Status:           StatusPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	f.requests[req.ID] = req
	return req, nil
}

func (f *fakeRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, id string) (Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (f *fakeRepository) Claim(ctx context.Context, tx pgx.Tx, id, riderID string) (Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if req.Status != StatusPending || req.RiderID != nil {
		return Request{}, lifecycle.ErrAlreadyClaimed
	}
	req.RiderID = &riderID
	req.Status = StatusInProgress
	req.UpdatedAt = time.Now()
	f.requests[id] = req
	return req, nil
}

func (f *fakeRepository) Complete(ctx context.Context, tx pgx.Tx, id, riderID string) (Request, error) {
	req, ok := f.requests[id]
	if !ok {
		return Request{}, ErrNotFound
	}
	if req.Status != StatusInProgress || req.RiderID == nil || *req.RiderID != riderID {
		return Request{}, lifecycle.ErrInvalidState
	}
	req.Status = StatusCompleted
	req.UpdatedAt = time.Now()
	f.requests[id] = req
	return req, nil
}

func (f *fakeRepository) ListForRequester(ctx context.Context, requesterID string) ([]Request, error) {
	var out []Request
	for _, r := range f.requests {
		if r.RequesterID == requesterID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListAvailable(ctx context.Context) ([]Request, error) {
	var out []Request
	for _, r := range f.requests {
		if r.RiderID == nil && r.Status == StatusPending {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) ListForRider(ctx context.Context, riderID string) ([]Request, error) {
	var out []Request
	for _, r := range f.requests {
		if r.RiderID != nil && *r.RiderID == riderID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeRepository) CountActiveForRequester(ctx context.Context, requesterID string) (int, error) {
	n := 0
	for _, r := range f.requests {
		if r.RequesterID == requesterID && (r.Status == StatusPending || r.Status == StatusInProgress) {
			n++
		}
	}
	return n, nil
}

func (f *fakeRepository) CountAvailable(ctx context.Context) (int, error) {
	open, err := f.ListAvailable(ctx)
	if err != nil {
		return 0, err
	}
	return len(open), nil
}

func (f *fakeRepository) CountCompletedTodayForRider(ctx context.Context, riderID string) (int, error) {
	n := 0
	for _, r := range f.requests {
		if r.RiderID != nil && *r.RiderID == riderID && r.Status == StatusCompleted {
			n++
		}
	}
	return n, nil
}

type fakePool struct {
	lastTx *fakeTx
}

func (f *fakePool) Begin(ctx context.Context) (pgx.Tx, error) {
	f.lastTx = &fakeTx{}
	return f.lastTx, nil
}

type fakeTx struct {
	rolled    bool
	committed bool
}

func (f *fakeTx) Begin(context.Context) (pgx.Tx, error) {
	return nil, errors.New("fakeTx does not support nested transactions")
}

func (f *fakeTx) Commit(context.Context) error {
	f.committed = true
	return nil
}

func (f *fakeTx) Rollback(context.Context) error {
	f.rolled = true
	return nil
}

func (f *fakeTx) CopyFrom(context.Context, pgx.Identifier, []string, pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}

func (f *fakeTx) SendBatch(context.Context, *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}

func (f *fakeTx) LargeObjects() pgx.LargeObjects {
	panic("not implemented")
}

func (f *fakeTx) Prepare(context.Context, string, string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}

func (f *fakeTx) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}

func (f *fakeTx) Query(context.Context, string, ...any) (pgx.Rows, error) {
	panic("not implemented")
}

func (f *fakeTx) QueryRow(context.Context, string, ...any) pgx.Row {
	panic("not implemented")
}

func (f *fakeTx) Conn() *pgx.Conn {
	return nil
}
