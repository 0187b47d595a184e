package main

import (
	"net/http"
	"strings"

	"github.com/turisesng/village-link-app/jobs"
	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/riders"
)

// handleJobs serves the collection: GET lists the caller's own requests,
// POST opens a new one.
func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.jobService.ListMine(r.Context(), actor)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toJobResponses(items)})
	case http.MethodPost:
		var body struct {
			ResidentName    string `json:"residentName"`
			ResidentAddress string `json:"residentAddress"`
			ServiceCategory string `json:"serviceCategory"`
			Description     string `json:"serviceDescription"`
			AvailableTime   string `json:"availableTime"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req, err := s.jobService.Create(r.Context(), actor, jobs.CreateParams{
			ResidentName:    body.ResidentName,
			ResidentAddress: body.ResidentAddress,
			ServiceCategory: jobs.Category(body.ServiceCategory),
			Description:     body.Description,
			AvailableTime:   body.AvailableTime,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusCreated, toJobResponse(req))
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleJobDetail serves /api/jobs/available, /api/jobs/accepted and the
// transition endpoints /api/jobs/{id}/claim and /api/jobs/{id}/complete.
func (s *Server) handleJobDetail(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")

	switch path {
	case "available":
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		category, ok := providerCategory(r)
		if !ok {
			writeJSONError(w, http.StatusForbidden, "no service category on profile")
			return
		}
		items, err := s.jobService.ListAvailable(r.Context(), actor, category)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toJobResponses(items)})
		return
	case "accepted":
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		items, err := s.jobService.ListAccepted(r.Context(), actor)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toJobResponses(items)})
		return
	}

	id, action, ok := strings.Cut(path, "/")
	if !ok || id == "" || r.Method != http.MethodPost {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	var (
		req jobs.Request
		err error
	)
	switch action {
	case "claim":
		req, err = s.jobService.Claim(r.Context(), actor, id)
	case "complete":
		req, err = s.jobService.Complete(r.Context(), actor, id)
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toJobResponse(req))
}

// providerCategory resolves the acting provider's registered category. Admins
// may pass ?category= to inspect any pool.
func providerCategory(r *http.Request) (jobs.Category, bool) {
	if c := r.URL.Query().Get("category"); c != "" && actorFrom(r).Role == lifecycle.RoleAdmin {
		return jobs.Category(c), true
	}
	p, ok := profileFrom(r)
	if !ok || p.ServiceCategory == nil || *p.ServiceCategory == "" {
		return "", false
	}
	return jobs.Category(*p.ServiceCategory), true
}

// handleDeliveries mirrors handleJobs for rider requests.
func (s *Server) handleDeliveries(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)

	switch r.Method {
	case http.MethodGet:
		items, err := s.riderService.ListMine(r.Context(), actor)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toDeliveryResponses(items)})
	case http.MethodPost:
		var body struct {
			RequesterName    string `json:"requesterName"`
			PickupLocation   string `json:"pickupLocation"`
			DeliveryLocation string `json:"deliveryLocation"`
			Description      string `json:"description"`
		}
		if err := decodeJSON(r, &body); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req, err := s.riderService.Create(r.Context(), actor, riders.CreateParams{
			RequesterName:    body.RequesterName,
			PickupLocation:   body.PickupLocation,
			DeliveryLocation: body.DeliveryLocation,
			Description:      body.Description,
		})
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusCreated, toDeliveryResponse(req))
	default:
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleDeliveryDetail serves /api/deliveries/available, /api/deliveries/accepted
// and the transition endpoints /api/deliveries/{id}/claim and {id}/complete.
func (s *Server) handleDeliveryDetail(w http.ResponseWriter, r *http.Request) {
	actor := actorFrom(r)
	path := strings.TrimPrefix(r.URL.Path, "/api/deliveries/")

	switch path {
	case "available":
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		items, err := s.riderService.ListAvailable(r.Context(), actor)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toDeliveryResponses(items)})
		return
	case "accepted":
		if r.Method != http.MethodGet {
			writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
			return
		}
		items, err := s.riderService.ListAccepted(r.Context(), actor)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		respond(w, http.StatusOK, map[string]any{"items": toDeliveryResponses(items)})
		return
	}

	id, action, ok := strings.Cut(path, "/")
	if !ok || id == "" || r.Method != http.MethodPost {
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}

	var (
		req riders.Request
		err error
	)
	switch action {
	case "claim":
		req, err = s.riderService.Claim(r.Context(), actor, id)
	case "complete":
		req, err = s.riderService.Complete(r.Context(), actor, id)
	default:
		writeJSONError(w, http.StatusBadRequest, "invalid path")
		return
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusOK, toDeliveryResponse(req))
}
