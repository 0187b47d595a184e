package profile

import (
	"time"

	"github.com/turisesng/village-link-app/lifecycle"
)

// Profile mirrors the profiles table, linked 1:1 to users by ID.
type Profile struct {
	ID               string
	FullName         string
	PhoneNumber      *string
	Role             lifecycle.Role
	ServiceCategory  *string
	IsApproved       bool
	IsOutsideEstate  bool
	HoursOfOperation *string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Actor projects a profile onto the lifecycle guard input.
func (p Profile) Actor() lifecycle.Actor {
	return lifecycle.Actor{
		ID:       p.ID,
		Role:     p.Role,
		Approved: p.IsApproved,
	}
}

// CreateParams contains the writes needed to materialise a profile at signup.
type CreateParams struct {
	UserID          string
	FullName        string
	PhoneNumber     string
	Role            lifecycle.Role
	ServiceCategory *string
	IsOutsideEstate bool
}
