package notification

import "time"

// Notification mirrors the notifications table.
type Notification struct {
	ID        string
	UserID    string
	Title     string
	Message   string
	Type      *string
	IsRead    bool
	CreatedAt time.Time
}

// Well-known notification types written by the lifecycle services.
const (
	TypeJobClaimed        = "job.claimed"
	TypeJobCompleted      = "job.completed"
	TypeDeliveryClaimed   = "delivery.claimed"
	TypeDeliveryCompleted = "delivery.completed"
	TypePermitDecided     = "permit.decided"
	TypeOnboardingDecided = "onboarding.decided"
)
