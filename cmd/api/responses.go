package main

import (
	"time"

	"github.com/turisesng/village-link-app/announcement"
	"github.com/turisesng/village-link-app/jobs"
	"github.com/turisesng/village-link-app/notification"
	"github.com/turisesng/village-link-app/onboarding"
	"github.com/turisesng/village-link-app/permits"
	"github.com/turisesng/village-link-app/profile"
	"github.com/turisesng/village-link-app/riders"
)

type jobResponse struct {
	ID              string  `json:"id"`
	ResidentID      string  `json:"residentId"`
	ResidentName    string  `json:"residentName"`
	ResidentAddress string  `json:"residentAddress"`
	ServiceCategory string  `json:"serviceCategory"`
	Description     string  `json:"serviceDescription"`
	AvailableTime   string  `json:"availableTime"`
	ProviderID      *string `json:"providerId"`
	Status          string  `json:"status"`
	CreatedAt       string  `json:"createdAt"`
	UpdatedAt       string  `json:"updatedAt"`
}

func toJobResponse(r jobs.Request) jobResponse {
	return jobResponse{
		ID:              r.ID,
		ResidentID:      r.ResidentID,
		ResidentName:    r.ResidentName,
		ResidentAddress: r.ResidentAddress,
		ServiceCategory: string(r.ServiceCategory),
		Description:     r.Description,
		AvailableTime:   r.AvailableTime,
		ProviderID:      r.ProviderID,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func toJobResponses(in []jobs.Request) []jobResponse {
	out := make([]jobResponse, 0, len(in))
	for _, r := range in {
		out = append(out, toJobResponse(r))
	}
	return out
}

type deliveryResponse struct {
	ID               string  `json:"id"`
	RequesterID      string  `json:"requesterId"`
	RequesterName    string  `json:"requesterName"`
	PickupLocation   string  `json:"pickupLocation"`
	DeliveryLocation string  `json:"deliveryLocation"`
	Description      string  `json:"description"`
	RiderID          *string `json:"riderId"`
	Status           string  `json:"status"`
	CreatedAt        string  `json:"createdAt"`
	UpdatedAt        string  `json:"updatedAt"`
}

func toDeliveryResponse(r riders.Request) deliveryResponse {
	return deliveryResponse{
		ID:               r.ID,
		RequesterID:      r.RequesterID,
		RequesterName:    r.RequesterName,
		PickupLocation:   r.PickupLocation,
		DeliveryLocation: r.DeliveryLocation,
		Description:      r.Description,
		RiderID:          r.RiderID,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:        r.UpdatedAt.Format(time.RFC3339),
	}
}

func toDeliveryResponses(in []riders.Request) []deliveryResponse {
	out := make([]deliveryResponse, 0, len(in))
	for _, r := range in {
		out = append(out, toDeliveryResponse(r))
	}
	return out
}

type permitResponse struct {
	ID          string  `json:"id"`
	RequesterID string  `json:"requesterId"`
	SubjectID   *string `json:"subjectId"`
	SubjectRole string  `json:"subjectRole"`
	Purpose     string  `json:"purpose"`
	Status      string  `json:"status"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toPermitResponse(p permits.Permit) permitResponse {
	return permitResponse{
		ID:          p.ID,
		RequesterID: p.RequesterID,
		SubjectID:   p.SubjectID,
		SubjectRole: string(p.SubjectRole),
		Purpose:     p.Purpose,
		Status:      string(p.Status),
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

func toPermitResponses(in []permits.Permit) []permitResponse {
	out := make([]permitResponse, 0, len(in))
	for _, p := range in {
		out = append(out, toPermitResponse(p))
	}
	return out
}

type onboardingResponse struct {
	ID              string            `json:"id"`
	UserID          string            `json:"userId"`
	FullName        string            `json:"fullName"`
	PhoneNumber     string            `json:"phoneNumber"`
	Role            string            `json:"role"`
	ServiceCategory *string           `json:"serviceCategory"`
	IsOutsideEstate bool              `json:"isOutsideEstate"`
	Documents       map[string]string `json:"documents"`
	Status          string            `json:"status"`
	CreatedAt       string            `json:"createdAt"`
	UpdatedAt       string            `json:"updatedAt"`
}

func toOnboardingResponse(r onboarding.Request) onboardingResponse {
	return onboardingResponse{
		ID:              r.ID,
		UserID:          r.UserID,
		FullName:        r.FullName,
		PhoneNumber:     r.PhoneNumber,
		Role:            string(r.Role),
		ServiceCategory: r.ServiceCategory,
		IsOutsideEstate: r.IsOutsideEstate,
		Documents:       r.Documents,
		Status:          string(r.Status),
		CreatedAt:       r.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       r.UpdatedAt.Format(time.RFC3339),
	}
}

func toOnboardingResponses(in []onboarding.Request) []onboardingResponse {
	out := make([]onboardingResponse, 0, len(in))
	for _, r := range in {
		out = append(out, toOnboardingResponse(r))
	}
	return out
}

type announcementResponse struct {
	ID        string `json:"id"`
	AdminID   string `json:"adminId"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

func toAnnouncementResponse(a announcement.Announcement) announcementResponse {
	return announcementResponse{
		ID:        a.ID,
		AdminID:   a.AdminID,
		Title:     a.Title,
		Content:   a.Content,
		CreatedAt: a.CreatedAt.Format(time.RFC3339),
	}
}

type notificationResponse struct {
	ID        string  `json:"id"`
	Title     string  `json:"title"`
	Message   string  `json:"message"`
	Type      *string `json:"type"`
	IsRead    bool    `json:"isRead"`
	CreatedAt string  `json:"createdAt"`
}

func toNotificationResponse(n notification.Notification) notificationResponse {
	return notificationResponse{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt.Format(time.RFC3339),
	}
}

type profileResponse struct {
	ID               string  `json:"id"`
	FullName         string  `json:"fullName"`
	PhoneNumber      *string `json:"phoneNumber"`
	Role             string  `json:"role"`
	ServiceCategory  *string `json:"serviceCategory"`
	IsApproved       bool    `json:"isApproved"`
	IsOutsideEstate  bool    `json:"isOutsideEstate"`
	HoursOfOperation *string `json:"hoursOfOperation"`
}

func toProfileResponse(p profile.Profile) profileResponse {
	return profileResponse{
		ID:               p.ID,
		FullName:         p.FullName,
		PhoneNumber:      p.PhoneNumber,
		Role:             string(p.Role),
		ServiceCategory:  p.ServiceCategory,
		IsApproved:       p.IsApproved,
		IsOutsideEstate:  p.IsOutsideEstate,
		HoursOfOperation: p.HoursOfOperation,
	}
}
