package permits

import (
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

// Status aliases the shared lifecycle status; permits move
// pending -> approved | rejected under an admin decision.
type Status = lifecycle.Status

const (
	StatusPending  = lifecycle.StatusPending
	StatusApproved = lifecycle.StatusApproved
	StatusRejected = lifecycle.StatusRejected
)

// Permit mirrors the gate_permits table. The subject is the outside worker the
// requester wants admitted through the estate gate.
type Permit struct {
	ID          string
	RequesterID string
	SubjectID   *string
	SubjectRole lifecycle.Role
	Purpose     string
	Status      Status
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Entity projects the permit onto the lifecycle guard input. Permits have no
// fulfiller; an admin decides them.
func (p Permit) Entity() lifecycle.Entity {
	return lifecycle.Entity{
		Kind:    lifecycle.KindGatePermit,
		OwnerID: p.RequesterID,
		Status:  p.Status,
	}
}

// CreateParams is the validated creation payload for a gate permit.
type CreateParams struct {
	RequesterID string         `validate:"required"`
	SubjectID   string         `validate:"omitempty"`
	SubjectRole lifecycle.Role `validate:"required,oneof=resident store service_provider rider admin"`
	Purpose     string         `validate:"required"`
}
