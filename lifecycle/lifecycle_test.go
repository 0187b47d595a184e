package lifecycle

import (
	"errors"
	"testing"
)

func strptr(s string) *string { return &s }

func TestCanClaim_HappyPath(t *testing.T) {
	provider := Actor{ID: "p1", Role: RoleServiceProvider, Approved: true}
	job := Entity{Kind: KindJobRequest, OwnerID: "r1", Status: StatusPending}

	if err := CanClaim(provider, job); err != nil {
		t.Fatalf("expected claim allowed, got %v", err)
	}

	rider := Actor{ID: "d1", Role: RoleRider, Approved: true}
	delivery := Entity{Kind: KindRiderRequest, OwnerID: "s1", Status: StatusPending}
	if err := CanClaim(rider, delivery); err != nil {
		t.Fatalf("expected rider claim allowed, got %v", err)
	}
}

func TestCanClaim_WrongRole(t *testing.T) {
	rider := Actor{ID: "d1", Role: RoleRider, Approved: true}
	job := Entity{Kind: KindJobRequest, OwnerID: "r1", Status: StatusPending}

	if err := CanClaim(rider, job); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}

	resident := Actor{ID: "r1", Role: RoleResident, Approved: true}
	if err := CanClaim(resident, job); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for owner self-claim, got %v", err)
	}
}

func TestCanClaim_UnapprovedProvider(t *testing.T) {
	provider := Actor{ID: "p1", Role: RoleServiceProvider}
	job := Entity{Kind: KindJobRequest, Status: StatusPending}

	if err := CanClaim(provider, job); !errors.Is(err, ErrNotApproved) {
		t.Fatalf("expected ErrNotApproved, got %v", err)
	}
}

func TestCanClaim_AlreadyClaimed(t *testing.T) {
	provider := Actor{ID: "p2", Role: RoleServiceProvider, Approved: true}

	claimed := Entity{Kind: KindJobRequest, Status: StatusInProgress, FulfillerID: strptr("p1")}
	if err := CanClaim(provider, claimed); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}

	// A pending row with a fulfiller set violates the null-iff-pending
	// invariant; treat it as claimed rather than allow a steal.
	inconsistent := Entity{Kind: KindJobRequest, Status: StatusPending, FulfillerID: strptr("p1")}
	if err := CanClaim(provider, inconsistent); !errors.Is(err, ErrAlreadyClaimed) {
		t.Fatalf("expected ErrAlreadyClaimed, got %v", err)
	}
}

func TestCanClaim_NotClaimableKind(t *testing.T) {
	admin := Actor{ID: "a1", Role: RoleAdmin, Approved: true}
	permit := Entity{Kind: KindGatePermit, Status: StatusPending}

	if err := CanClaim(admin, permit); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for non-claimable kind, got %v", err)
	}
}

func TestCanComplete(t *testing.T) {
	assigned := Actor{ID: "p1", Role: RoleServiceProvider, Approved: true}
	other := Actor{ID: "p2", Role: RoleServiceProvider, Approved: true}
	job := Entity{Kind: KindJobRequest, Status: StatusInProgress, FulfillerID: strptr("p1")}

	if err := CanComplete(assigned, job); err != nil {
		t.Fatalf("expected complete allowed, got %v", err)
	}
	if err := CanComplete(other, job); !errors.Is(err, ErrNotAssignedActor) {
		t.Fatalf("expected ErrNotAssignedActor, got %v", err)
	}

	done := Entity{Kind: KindJobRequest, Status: StatusCompleted, FulfillerID: strptr("p1")}
	if err := CanComplete(assigned, done); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}

	unclaimed := Entity{Kind: KindJobRequest, Status: StatusPending}
	if err := CanComplete(assigned, unclaimed); !errors.Is(err, ErrNotAssignedActor) {
		t.Fatalf("expected ErrNotAssignedActor on unclaimed row, got %v", err)
	}
}

func TestCanApproveAndReject(t *testing.T) {
	admin := Actor{ID: "a1", Role: RoleAdmin, Approved: true}
	resident := Actor{ID: "r1", Role: RoleResident, Approved: true}

	for _, kind := range []Kind{KindGatePermit, KindOnboardingRequest} {
		pending := Entity{Kind: kind, Status: StatusPending}
		if err := CanApprove(admin, pending); err != nil {
			t.Fatalf("%s: expected admin approve allowed, got %v", kind, err)
		}
		if err := CanReject(admin, pending); err != nil {
			t.Fatalf("%s: expected admin reject allowed, got %v", kind, err)
		}
		if err := CanApprove(resident, pending); !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("%s: expected ErrUnauthorized, got %v", kind, err)
		}

		decided := Entity{Kind: kind, Status: StatusApproved}
		if err := CanApprove(admin, decided); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("%s: expected ErrInvalidState re-approving, got %v", kind, err)
		}
	}

	// Job and rider requests offer no admin decision path.
	job := Entity{Kind: KindJobRequest, Status: StatusPending}
	if err := CanReject(admin, job); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized rejecting a job request, got %v", err)
	}
}

func TestClaimedStatus(t *testing.T) {
	cases := map[Kind]Status{
		KindJobRequest:        StatusInProgress,
		KindRiderRequest:      StatusInProgress,
		KindGatePermit:        StatusApproved,
		KindOnboardingRequest: StatusApproved,
	}
	for kind, want := range cases {
		got, err := ClaimedStatus(kind)
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if got != want {
			t.Fatalf("%s: expected %s, got %s", kind, want, got)
		}
	}

	if _, err := ClaimedStatus(Kind("invoice")); !errors.Is(err, ErrUnknownKind) {
		t.Fatalf("expected ErrUnknownKind, got %v", err)
	}
}

func TestCanView(t *testing.T) {
	owner := Actor{ID: "r1", Role: RoleResident, Approved: true}
	provider := Actor{ID: "p1", Role: RoleServiceProvider, Approved: true}
	stranger := Actor{ID: "x1", Role: RoleResident, Approved: true}
	admin := Actor{ID: "a1", Role: RoleAdmin, Approved: true}

	pending := Entity{Kind: KindJobRequest, OwnerID: "r1", Status: StatusPending}
	claimed := Entity{Kind: KindJobRequest, OwnerID: "r1", Status: StatusInProgress, FulfillerID: strptr("p1")}

	if !CanView(owner, pending) || !CanView(owner, claimed) {
		t.Fatal("owner should see own rows regardless of status")
	}
	if !CanView(provider, pending) {
		t.Fatal("fulfiller role should see unclaimed pending rows")
	}
	if !CanView(provider, claimed) {
		t.Fatal("assigned fulfiller should see claimed row")
	}
	if CanView(stranger, pending) || CanView(stranger, claimed) {
		t.Fatal("unrelated resident should see nothing")
	}
	if !CanView(admin, claimed) {
		t.Fatal("admin view is unrestricted")
	}

	otherClaim := Entity{Kind: KindJobRequest, OwnerID: "r1", Status: StatusInProgress, FulfillerID: strptr("p2")}
	if CanView(provider, otherClaim) {
		t.Fatal("fulfiller should not see rows assigned to someone else")
	}
}
