package onboarding

import (
	"io"
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

// Status aliases the shared lifecycle status; onboarding requests move
// pending -> approved | rejected under an admin decision.
type Status = lifecycle.Status

const (
	StatusPending  = lifecycle.StatusPending
	StatusApproved = lifecycle.StatusApproved
	StatusRejected = lifecycle.StatusRejected
)

// Document kinds collected at signup. Which ones are required depends on the
// requested role and whether the applicant operates inside the estate.
const (
	DocIdentification       = "identification"
	DocProofOfAddress       = "proof_of_address"
	DocBusinessRegistration = "business_registration"
	DocSkillCertification   = "skill_certification"
	DocVehicleLicense       = "vehicle_license"
	DocDriverLicense        = "driver_license"
)

// Request mirrors the onboarding_requests table. Documents maps document kind
// to the uploaded object URL and is stored as jsonb.
type Request struct {
	ID              string
	UserID          string
	FullName        string
	PhoneNumber     string
	Role            lifecycle.Role
	ServiceCategory *string
	IsOutsideEstate bool
	Documents       map[string]string
	Status          Status
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Entity projects the request onto the lifecycle guard input.
func (r Request) Entity() lifecycle.Entity {
	return lifecycle.Entity{
		Kind:    lifecycle.KindOnboardingRequest,
		OwnerID: r.UserID,
		Status:  r.Status,
	}
}

// Document is a signup attachment prior to upload.
type Document struct {
	Name    string
	Content io.Reader
}

// SubmitParams carries the full signup payload: account credentials, profile
// details, and the role-specific documents.
type SubmitParams struct {
	Email           string         `validate:"required,email"`
	Password        string         `validate:"required"`
	FullName        string         `validate:"required"`
	PhoneNumber     string         `validate:"required"`
	Role            lifecycle.Role `validate:"required,oneof=resident store service_provider rider"`
	ServiceCategory string
	IsOutsideEstate bool
	Documents       map[string]Document
}
