package riders

import (
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

// Status aliases the shared lifecycle status; delivery requests move
// pending -> in_progress -> completed.
type Status = lifecycle.Status

const (
	StatusPending    = lifecycle.StatusPending
	StatusInProgress = lifecycle.StatusInProgress
	StatusCompleted  = lifecycle.StatusCompleted
)

// Request mirrors the rider_requests table. Residents and stores open
// deliveries; any approved rider may claim one.
type Request struct {
	ID               string
	RequesterID      string
	RequesterName    string
	PickupLocation   string
	DeliveryLocation string
	Description      string
	RiderID          *string
	Status           Status
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Entity projects the request onto the lifecycle guard input.
func (r Request) Entity() lifecycle.Entity {
	return lifecycle.Entity{
		Kind:        lifecycle.KindRiderRequest,
		OwnerID:     r.RequesterID,
		FulfillerID: r.RiderID,
		Status:      r.Status,
	}
}

// CreateParams is the validated creation payload for a delivery request.
type CreateParams struct {
	RequesterID      string `validate:"required"`
	RequesterName    string `validate:"required"`
	PickupLocation   string `validate:"required"`
	DeliveryLocation string `validate:"required"`
	Description      string `validate:"required"`
}
