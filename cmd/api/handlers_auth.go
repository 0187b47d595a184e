package main

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/turisesng/village-link-app/auth"
	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/onboarding"
)

// maxSignupFormBytes bounds the in-memory part of the multipart signup form.
const maxSignupFormBytes = 32 << 20

var signupDocumentKinds = []string{
	onboarding.DocIdentification,
	onboarding.DocProofOfAddress,
	onboarding.DocBusinessRegistration,
	onboarding.DocSkillCertification,
	onboarding.DocVehicleLicense,
	onboarding.DocDriverLicense,
}

// handleSignup accepts a multipart form: account and profile fields plus the
// role-specific documents, one file part per document kind.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if err := r.ParseMultipartForm(maxSignupFormBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	outside, _ := strconv.ParseBool(r.FormValue("isOutsideEstate"))
	params := onboarding.SubmitParams{
		Email:           r.FormValue("email"),
		Password:        r.FormValue("password"),
		FullName:        r.FormValue("fullName"),
		PhoneNumber:     r.FormValue("phoneNumber"),
		Role:            lifecycle.Role(r.FormValue("role")),
		ServiceCategory: r.FormValue("serviceCategory"),
		IsOutsideEstate: outside,
		Documents:       make(map[string]onboarding.Document),
	}

	for _, kind := range signupDocumentKinds {
		file, header, err := r.FormFile(kind)
		if err != nil {
			if errors.Is(err, http.ErrMissingFile) {
				continue
			}
			writeJSONError(w, http.StatusBadRequest, "invalid document upload")
			return
		}
		defer file.Close()
		params.Documents[kind] = onboarding.Document{Name: header.Filename, Content: file}
	}

	req, err := s.onboardingService.Submit(r.Context(), params)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	respond(w, http.StatusCreated, toOnboardingResponse(req))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.authService.Login(r.Context(), auth.LoginRequest{
		Email:    body.Email,
		Password: body.Password,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"token": result.Token,
		"user": map[string]string{
			"id":    result.User.ID,
			"email": result.User.Email,
			"role":  string(result.User.Role),
		},
	})
}

// handleMe returns the caller's profile and the state of their onboarding
// request, which is what the client needs to route between the pending screen
// and the dashboard.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSONError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	actor := actorFrom(r)
	payload := map[string]any{}
	if p, ok := profileFrom(r); ok {
		payload["profile"] = toProfileResponse(p)
	}

	req, err := s.onboardingService.StatusForUser(r.Context(), actor.ID)
	switch {
	case err == nil:
		payload["onboarding"] = toOnboardingResponse(req)
	case errors.Is(err, onboarding.ErrNotFound):
		// Seeded accounts (admins) have no onboarding request.
	default:
		s.writeError(w, r, err)
		return
	}

	respond(w, http.StatusOK, payload)
}
