package main

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/turisesng/village-link-app/announcement"
	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/onboarding"
	"github.com/turisesng/village-link-app/permits"
)

func limitParam(r *http.Request) int {
	n, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	return n
}

// handlePermits serves the collection: GET lists the caller's own permits,
// POST requests a new one.
func (s *Server) handlePermits(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.permitService.ListMine(r.Context(), actor)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toPermitResponses(items)})
	case http.MethodPost:
		var body struct {
			SubjectID   string `json:"subjectId"`
			SubjectRole string `json:"subjectRole"`
			Purpose     string `json:"purpose"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		p, err := s.permitService.Create(r.Context(), actor, permits.CreateParams{
			SubjectID:   body.SubjectID,
			SubjectRole: lifecycle.Role(body.SubjectRole),
			Purpose:     body.Purpose,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusCreated, toPermitResponse(p))
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handlePermitDetail serves /api/permits/all and the decision endpoints
// /api/permits/{id}/approve and /api/permits/{id}/reject.
func (s *Server) handlePermitDetail(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	path := strings.TrimPrefix(r.URL.Path, "/api/permits/")

	if path == "all" {
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		items, err := s.permitService.ListAll(r.Context(), actor, limitParam(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toPermitResponses(items)})
		return
	}

	id, action, ok := strings.Cut(path, "/")
	if !ok || id == "" || r.Method != http.MethodPost {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	var (
		p   permits.Permit
		err error
	)
	switch action {
	case "approve":
		p, err = s.permitService.Approve(r.Context(), actor, id)
	case "reject":
		p, err = s.permitService.Reject(r.Context(), actor, id)
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toPermitResponse(p))
}

// handleOnboardingQueue lists pending onboarding requests for review.
func (s *Server) handleOnboardingQueue(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, err := s.onboardingService.ListPending(r.Context(), actorFrom(r), limitParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]any{"items": toOnboardingResponses(items)})
}

// handleOnboardingDetail serves /api/onboarding/{id}/approve and {id}/reject.
func (s *Server) handleOnboardingDetail(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	path := strings.TrimPrefix(r.URL.Path, "/api/onboarding/")

	id, action, ok := strings.Cut(path, "/")
	if !ok || id == "" || r.Method != http.MethodPost {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	var (
		req onboarding.Request
		err error
	)
	switch action {
	case "approve":
		req, err = s.onboardingService.Approve(r.Context(), actor, id)
	case "reject":
		req, err = s.onboardingService.Reject(r.Context(), actor, id)
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toOnboardingResponse(req))
}

func (s *Server) handleAnnouncements(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.announcementService.List(r.Context(), limitParam(r))
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		out := make([]announcementResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAnnouncementResponse(a))
		}
		respond(w, http.StatusOK, map[string]any{"items": out})
	case http.MethodPost:
		var body struct {
			Title   string `json:"title"`
			Content string `json:"content"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		a, err := s.announcementService.Broadcast(r.Context(), actor, announcement.BroadcastParams{
			Title:   body.Title,
			Content: body.Content,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusCreated, toAnnouncementResponse(a))
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleAnnouncementDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/api/announcements/")
	if id == "" || strings.Contains(id, "/") {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if err := s.announcementService.Delete(r.Context(), actorFrom(r), id); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}

func (s *Server) handleNotifications(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	items, err := s.notificationService.List(r.Context(), actorFrom(r).ID, limitParam(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, toNotificationResponse(n))
	}
	respond(w, http.StatusOK, map[string]any{"items": out})
}

// handleNotificationDetail serves POST /api/notifications/{id}/read.
func (s *Server) handleNotificationDetail(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/notifications/")
	id, action, ok := strings.Cut(path, "/")
	if !ok || id == "" || action != "read" || r.Method != http.MethodPost {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	if err := s.notificationService.MarkRead(r.Context(), actorFrom(r).ID, id); err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusNoContent, nil)
}

// handleDashboard returns the role-appropriate counters for the landing page.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := actorFrom(r)
	ctx := r.Context()
	payload := map[string]int{}

	switch actor.Role {
	case lifecycle.RoleResident, lifecycle.RoleStore:
		activeJobs, err := s.jobService.CountActive(ctx, actor.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		activeDeliveries, err := s.riderService.CountActive(ctx, actor.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		payload["activeJobRequests"] = activeJobs
		payload["activeDeliveries"] = activeDeliveries
	case lifecycle.RoleServiceProvider:
		category, ok := providerCategory(r)
		if !ok {
			writeJSONError(w, http.StatusForbidden, "no service category on profile")
			return
		}
		available, err := s.jobService.CountAvailable(ctx, category)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		payload["availableJobs"] = available
	case lifecycle.RoleRider:
		available, err := s.riderService.CountAvailable(ctx)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		completedToday, err := s.riderService.CountCompletedToday(ctx, actor.ID)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		payload["availableDeliveries"] = available
		payload["completedToday"] = completedToday
	default:
		writeJSONError(w, http.StatusForbidden, "no dashboard for role")
		return
	}

	respond(w, http.StatusOK, payload)
}

func (s *Server) handleAdminSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	summary, err := s.adminService.Summary(r.Context(), actorFrom(r))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, map[string]int{
		"pendingOnboarding": summary.PendingOnboarding,
		"pendingPermits":    summary.PendingPermits,
		"pendingJobs":       summary.PendingJobs,
		"pendingDeliveries": summary.PendingDeliveries,
	})
}
