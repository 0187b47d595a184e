package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/turisesng/village-link-app/admin"
	"github.com/turisesng/village-link-app/announcement"
	"github.com/turisesng/village-link-app/auth"
	"github.com/turisesng/village-link-app/jobs"
	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/notification"
	"github.com/turisesng/village-link-app/onboarding"
	"github.com/turisesng/village-link-app/permits"
	"github.com/turisesng/village-link-app/profile"
	"github.com/turisesng/village-link-app/riders"
	"github.com/turisesng/village-link-app/storage"
)

type ctxKey int

const (
	ctxKeyActor ctxKey = iota
	ctxKeyProfile
)

type authService interface {
	Login(ctx context.Context, req auth.LoginRequest) (auth.LoginResult, error)
	VerifyToken(token string) (string, auth.Role, error)
}

type profileService interface {
	GetByID(ctx context.Context, id string) (profile.Profile, error)
}

type jobService interface {
	Create(ctx context.Context, actor lifecycle.Actor, params jobs.CreateParams) (jobs.Request, error)
	Claim(ctx context.Context, actor lifecycle.Actor, requestID string) (jobs.Request, error)
	Complete(ctx context.Context, actor lifecycle.Actor, requestID string) (jobs.Request, error)
	ListMine(ctx context.Context, actor lifecycle.Actor) ([]jobs.Request, error)
	ListAvailable(ctx context.Context, actor lifecycle.Actor, category jobs.Category) ([]jobs.Request, error)
	ListAccepted(ctx context.Context, actor lifecycle.Actor) ([]jobs.Request, error)
	CountActive(ctx context.Context, residentID string) (int, error)
	CountAvailable(ctx context.Context, category jobs.Category) (int, error)
}

type riderService interface {
	Create(ctx context.Context, actor lifecycle.Actor, params riders.CreateParams) (riders.Request, error)
	Claim(ctx context.Context, actor lifecycle.Actor, requestID string) (riders.Request, error)
	Complete(ctx context.Context, actor lifecycle.Actor, requestID string) (riders.Request, error)
	ListMine(ctx context.Context, actor lifecycle.Actor) ([]riders.Request, error)
	ListAvailable(ctx context.Context, actor lifecycle.Actor) ([]riders.Request, error)
	ListAccepted(ctx context.Context, actor lifecycle.Actor) ([]riders.Request, error)
	CountActive(ctx context.Context, requesterID string) (int, error)
	CountAvailable(ctx context.Context) (int, error)
	CountCompletedToday(ctx context.Context, riderID string) (int, error)
}

type permitService interface {
	Create(ctx context.Context, actor lifecycle.Actor, params permits.CreateParams) (permits.Permit, error)
	Approve(ctx context.Context, actor lifecycle.Actor, permitID string) (permits.Permit, error)
	Reject(ctx context.Context, actor lifecycle.Actor, permitID string) (permits.Permit, error)
	ListMine(ctx context.Context, actor lifecycle.Actor) ([]permits.Permit, error)
	ListAll(ctx context.Context, actor lifecycle.Actor, limit int) ([]permits.Permit, error)
}

type onboardingService interface {
	Submit(ctx context.Context, params onboarding.SubmitParams) (onboarding.Request, error)
	Approve(ctx context.Context, actor lifecycle.Actor, requestID string) (onboarding.Request, error)
	Reject(ctx context.Context, actor lifecycle.Actor, requestID string) (onboarding.Request, error)
	StatusForUser(ctx context.Context, userID string) (onboarding.Request, error)
	ListPending(ctx context.Context, actor lifecycle.Actor, limit int) ([]onboarding.Request, error)
}

type announcementService interface {
	Broadcast(ctx context.Context, actor lifecycle.Actor, params announcement.BroadcastParams) (announcement.Announcement, error)
	List(ctx context.Context, limit int) ([]announcement.Announcement, error)
	Delete(ctx context.Context, actor lifecycle.Actor, id string) error
}

type notificationService interface {
	List(ctx context.Context, userID string, limit int) ([]notification.Notification, error)
	MarkRead(ctx context.Context, userID, id string) error
}

type adminService interface {
	Summary(ctx context.Context, actor lifecycle.Actor) (admin.Summary, error)
}

// Server carries the domain services behind the HTTP surface.
type Server struct {
	authService         authService
	profileService      profileService
	jobService          jobService
	riderService        riderService
	permitService       permitService
	onboardingService   onboardingService
	announcementService announcementService
	notificationService notificationService
	adminService        adminService
	logger              zerolog.Logger
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/auth/signup", s.handleSignup)
	mux.HandleFunc("/api/auth/login", s.handleLogin)
	mux.HandleFunc("/api/me", s.requireAuth(s.handleMe))
	mux.HandleFunc("/api/jobs", s.requireAuth(s.handleJobs))
	mux.HandleFunc("/api/jobs/", s.requireAuth(s.handleJobDetail))
	mux.HandleFunc("/api/deliveries", s.requireAuth(s.handleDeliveries))
	mux.HandleFunc("/api/deliveries/", s.requireAuth(s.handleDeliveryDetail))
	mux.HandleFunc("/api/permits", s.requireAuth(s.handlePermits))
	mux.HandleFunc("/api/permits/", s.requireAuth(s.handlePermitDetail))
	mux.HandleFunc("/api/onboarding", s.requireAuth(s.handleOnboardingQueue))
	mux.HandleFunc("/api/onboarding/", s.requireAuth(s.handleOnboardingDetail))
	mux.HandleFunc("/api/announcements", s.requireAuth(s.handleAnnouncements))
	mux.HandleFunc("/api/announcements/", s.requireAuth(s.handleAnnouncementDetail))
	mux.HandleFunc("/api/notifications", s.requireAuth(s.handleNotifications))
	mux.HandleFunc("/api/notifications/", s.requireAuth(s.handleNotificationDetail))
	mux.HandleFunc("/api/dashboard", s.requireAuth(s.handleDashboard))
	mux.HandleFunc("/api/admin/summary", s.requireAuth(s.handleAdminSummary))
	return mux
}

// requireAuth verifies the bearer token and resolves the caller's profile so
// downstream handlers see a fresh approval flag, not the one minted into the
// token at login time.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}

		userID, role, err := s.authService.VerifyToken(token)
		if err != nil {
			writeJSONError(w, http.StatusUnauthorized, "invalid token")
			return
		}

		actor := lifecycle.Actor{ID: userID, Role: role}
		ctx := r.Context()
		p, err := s.profileService.GetByID(ctx, userID)
		switch {
		case err == nil:
			actor = p.Actor()
			ctx = context.WithValue(ctx, ctxKeyProfile, p)
		case errors.Is(err, profile.ErrNotFound):
			// Account without a profile row: treat as unapproved.
		default:
			s.logger.Error().Err(err).Str("user_id", userID).Msg("resolve profile")
			writeJSONError(w, http.StatusInternalServerError, "internal error")
			return
		}

		ctx = context.WithValue(ctx, ctxKeyActor, actor)
		next(w, r.WithContext(ctx))
	}
}

func actorFrom(r *http.Request) lifecycle.Actor {
	actor, _ := r.Context().Value(ctxKeyActor).(lifecycle.Actor)
	return actor
}

func profileFrom(r *http.Request) (profile.Profile, bool) {
	p, ok := r.Context().Value(ctxKeyProfile).(profile.Profile)
	return p, ok
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	respond(w, status, map[string]string{"error": message})
}

// writeError maps domain sentinels onto HTTP statuses.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, jobs.ErrValidation),
		errors.Is(err, riders.ErrValidation),
		errors.Is(err, permits.ErrValidation),
		errors.Is(err, onboarding.ErrValidation),
		errors.Is(err, announcement.ErrValidation),
		errors.Is(err, auth.ErrWeakPassword),
		errors.Is(err, storage.ErrEmptyFile),
		errors.Is(err, storage.ErrTooLarge):
		writeJSONError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSONError(w, http.StatusUnauthorized, "invalid credentials")
	case errors.Is(err, lifecycle.ErrUnauthorized),
		errors.Is(err, lifecycle.ErrNotApproved),
		errors.Is(err, lifecycle.ErrNotAssignedActor):
		writeJSONError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, jobs.ErrNotFound),
		errors.Is(err, riders.ErrNotFound),
		errors.Is(err, permits.ErrNotFound),
		errors.Is(err, onboarding.ErrNotFound),
		errors.Is(err, announcement.ErrNotFound),
		errors.Is(err, notification.ErrNotFound),
		errors.Is(err, profile.ErrNotFound),
		errors.Is(err, auth.ErrUserNotFound):
		writeJSONError(w, http.StatusNotFound, "not found")
	case errors.Is(err, lifecycle.ErrAlreadyClaimed),
		errors.Is(err, lifecycle.ErrInvalidState),
		errors.Is(err, auth.ErrDuplicateEmail):
		writeJSONError(w, http.StatusConflict, err.Error())
	default:
		s.logger.Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		writeJSONError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeJSON(r *http.Request, dst any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
