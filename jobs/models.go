package jobs

import (
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

// Status aliases the shared lifecycle status; job requests move
// pending -> in_progress -> completed.
type Status = lifecycle.Status

const (
	StatusPending    = lifecycle.StatusPending
	StatusInProgress = lifecycle.StatusInProgress
	StatusCompleted  = lifecycle.StatusCompleted
)

// Category enumerates the service_category values providers register under.
type Category string

const (
	CategoryPlumber     Category = "plumber"
	CategoryElectrician Category = "electrician"
	CategoryCarpenter   Category = "carpenter"
	CategoryPainter     Category = "painter"
	CategoryWelder      Category = "welder"
	CategoryMechanic    Category = "mechanic"
	CategoryCleaner     Category = "cleaner"
	CategoryGardener    Category = "gardener"
	CategoryOther       Category = "other"
)

// Request mirrors the job_requests table. ProviderID stays nil exactly while
// the request is pending; claiming sets both fields in one update.
type Request struct {
	ID              string
	ResidentID      string
	ResidentName    string
	ResidentAddress string
	ServiceCategory Category
	Description     string
	AvailableTime   string
	ProviderID      *string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Entity projects the request onto the lifecycle guard input.
func (r Request) Entity() lifecycle.Entity {
	return lifecycle.Entity{
		Kind:        lifecycle.KindJobRequest,
		OwnerID:     r.ResidentID,
		FulfillerID: r.ProviderID,
		Status:      r.Status,
	}
}

// CreateParams is the validated creation payload for a job request.
type CreateParams struct {
	ResidentID      string   `validate:"required"`
	ResidentName    string   `validate:"required"`
	ResidentAddress string   `validate:"required"`
	ServiceCategory Category `validate:"required,oneof=plumber electrician carpenter painter welder mechanic cleaner gardener other"`
	Description     string   `validate:"required"`
	AvailableTime   string   `validate:"required"`
}
