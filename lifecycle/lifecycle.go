package lifecycle

import "errors"

// Status is the single lifecycle state carried by every request entity.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusApproved   Status = "approved"
	StatusRejected   Status = "rejected"
)

// Role mirrors the user_role enum.
type Role string

const (
	RoleResident        Role = "resident"
	RoleStore           Role = "store"
	RoleServiceProvider Role = "service_provider"
	RoleRider           Role = "rider"
	RoleAdmin           Role = "admin"
)

// Kind identifies which request entity a rule set applies to.
type Kind string

const (
	KindJobRequest        Kind = "job_request"
	KindRiderRequest      Kind = "rider_request"
	KindGatePermit        Kind = "gate_permit"
	KindOnboardingRequest Kind = "onboarding_request"
)

var (
	// ErrAlreadyClaimed signals a claim attempted on a row no longer pending.
	ErrAlreadyClaimed = errors.New("lifecycle: request already claimed")
	// ErrInvalidState signals a transition attempted from a state that does not permit it.
	ErrInvalidState = errors.New("lifecycle: invalid state for transition")
	// ErrNotAssignedActor signals a fulfiller-only transition invoked by someone else.
	ErrNotAssignedActor = errors.New("lifecycle: actor is not the assigned fulfiller")
	// ErrUnauthorized signals the actor's role does not permit the transition.
	ErrUnauthorized = errors.New("lifecycle: actor not authorized for transition")
	// ErrNotApproved signals the actor's profile has not been approved yet.
	ErrNotApproved = errors.New("lifecycle: actor profile not approved")
	// ErrUnknownKind signals an entity kind with no rule set.
	ErrUnknownKind = errors.New("lifecycle: unknown entity kind")
)

// Actor is the authenticated user attempting a transition.
type Actor struct {
	ID       string
	Role     Role
	Approved bool
}

// Entity is the lifecycle-relevant projection of a request row.
type Entity struct {
	Kind        Kind
	OwnerID     string
	FulfillerID *string
	Status      Status
}

// rules captures, per kind, who claims and who decides.
type rules struct {
	fulfillerRole Role // empty when the kind is not claimable
	claimedStatus Status
	adminDecides  bool
}

var ruleTable = map[Kind]rules{
	KindJobRequest:        {fulfillerRole: RoleServiceProvider, claimedStatus: StatusInProgress},
	KindRiderRequest:      {fulfillerRole: RoleRider, claimedStatus: StatusInProgress},
	KindGatePermit:        {adminDecides: true, claimedStatus: StatusApproved},
	KindOnboardingRequest: {adminDecides: true, claimedStatus: StatusApproved},
}

// ClaimedStatus returns the status a successful claim (or approval) lands on.
func ClaimedStatus(kind Kind) (Status, error) {
	r, ok := ruleTable[kind]
	if !ok {
		return "", ErrUnknownKind
	}
	return r.claimedStatus, nil
}

// CanClaim reports whether the actor may claim the entity right now. Claiming
// assigns the actor as fulfiller and advances pending to the claimed status;
// only the kind's fulfiller role may do it, and only while the row is pending
// with no fulfiller set. Returns nil when permitted.
func CanClaim(actor Actor, e Entity) error {
	r, ok := ruleTable[e.Kind]
	if !ok {
		return ErrUnknownKind
	}
	if r.fulfillerRole == "" {
		return ErrUnauthorized
	}
	if actor.Role != r.fulfillerRole {
		return ErrUnauthorized
	}
	if !actor.Approved {
		return ErrNotApproved
	}
	if e.Status != StatusPending || e.FulfillerID != nil {
		return ErrAlreadyClaimed
	}
	return nil
}

// CanComplete reports whether the actor may mark the entity completed. Only
// the assigned fulfiller may complete, and only from in_progress.
func CanComplete(actor Actor, e Entity) error {
	r, ok := ruleTable[e.Kind]
	if !ok {
		return ErrUnknownKind
	}
	if r.fulfillerRole == "" {
		return ErrInvalidState
	}
	if e.FulfillerID == nil || *e.FulfillerID != actor.ID {
		return ErrNotAssignedActor
	}
	if e.Status != StatusInProgress {
		return ErrInvalidState
	}
	return nil
}

// CanApprove reports whether the actor may approve the entity. Approval is an
// admin decision on pending gate permits and onboarding requests.
func CanApprove(actor Actor, e Entity) error {
	return canDecide(actor, e)
}

// CanReject reports whether the actor may reject the entity. Same rules as
// approval; job and rider requests expose no reject transition.
func CanReject(actor Actor, e Entity) error {
	return canDecide(actor, e)
}

func canDecide(actor Actor, e Entity) error {
	r, ok := ruleTable[e.Kind]
	if !ok {
		return ErrUnknownKind
	}
	if !r.adminDecides {
		return ErrUnauthorized
	}
	if actor.Role != RoleAdmin {
		return ErrUnauthorized
	}
	if e.Status != StatusPending {
		return ErrInvalidState
	}
	return nil
}

// CanView reports whether the actor may see the entity in a list view:
// owners see their own rows, fulfillers see rows assigned to them or still
// unassigned and pending, admins see everything.
func CanView(actor Actor, e Entity) bool {
	if actor.Role == RoleAdmin {
		return true
	}
	if e.OwnerID == actor.ID {
		return true
	}
	r, ok := ruleTable[e.Kind]
	if !ok || r.fulfillerRole == "" || actor.Role != r.fulfillerRole {
		return false
	}
	if e.FulfillerID != nil {
		return *e.FulfillerID == actor.ID
	}
	return e.Status == StatusPending
}
