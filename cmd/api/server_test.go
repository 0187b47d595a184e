package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/turisesng/village-link-app/admin"
	"github.com/turisesng/village-link-app/auth"
	"github.com/turisesng/village-link-app/jobs"
	"github.com/turisesng/village-link-app/lifecycle"
	"github.com/turisesng/village-link-app/profile"
	"github.com/turisesng/village-link-app/riders"
)

type stubAuthService struct {
	loginResult auth.LoginResult
	loginErr    error
	userID      string
	role        auth.Role
	verifyErr   error
}

func (s *stubAuthService) Login(_ context.Context, _ auth.LoginRequest) (auth.LoginResult, error) {
	return s.loginResult, s.loginErr
}

func (s *stubAuthService) VerifyToken(_ string) (string, auth.Role, error) {
	return s.userID, s.role, s.verifyErr
}

type stubProfileService struct {
	profile profile.Profile
	err     error
}

func (s *stubProfileService) GetByID(_ context.Context, _ string) (profile.Profile, error) {
	return s.profile, s.err
}

type stubJobService struct {
	created    jobs.Request
	createErr  error
	claimed    jobs.Request
	claimErr   error
	completed  jobs.Request
	claimCalls int
}

func (s *stubJobService) Create(_ context.Context, _ lifecycle.Actor, _ jobs.CreateParams) (jobs.Request, error) {
	return s.created, s.createErr
}

func (s *stubJobService) Claim(_ context.Context, _ lifecycle.Actor, _ string) (jobs.Request, error) {
	s.claimCalls++
	return s.claimed, s.claimErr
}

func (s *stubJobService) Complete(_ context.Context, _ lifecycle.Actor, _ string) (jobs.Request, error) {
	return s.completed, nil
}

func (s *stubJobService) ListMine(_ context.Context, _ lifecycle.Actor) ([]jobs.Request, error) {
	return []jobs.Request{s.created}, nil
}

func (s *stubJobService) ListAvailable(_ context.Context, _ lifecycle.Actor, _ jobs.Category) ([]jobs.Request, error) {
	return nil, nil
}

func (s *stubJobService) ListAccepted(_ context.Context, _ lifecycle.Actor) ([]jobs.Request, error) {
	return nil, nil
}

func (s *stubJobService) CountActive(_ context.Context, _ string) (int, error) {
	return 2, nil
}

func (s *stubJobService) CountAvailable(_ context.Context, _ jobs.Category) (int, error) {
	return 5, nil
}

type stubRiderService struct{}

func (stubRiderService) Create(_ context.Context, _ lifecycle.Actor, _ riders.CreateParams) (riders.Request, error) {
	return riders.Request{}, nil
}

func (stubRiderService) Claim(_ context.Context, _ lifecycle.Actor, _ string) (riders.Request, error) {
	return riders.Request{}, nil
}

func (stubRiderService) Complete(_ context.Context, _ lifecycle.Actor, _ string) (riders.Request, error) {
	return riders.Request{}, nil
}

func (stubRiderService) ListMine(_ context.Context, _ lifecycle.Actor) ([]riders.Request, error) {
	return nil, nil
}

func (stubRiderService) ListAvailable(_ context.Context, _ lifecycle.Actor) ([]riders.Request, error) {
	return nil, nil
}

func (stubRiderService) ListAccepted(_ context.Context, _ lifecycle.Actor) ([]riders.Request, error) {
	return nil, nil
}

func (stubRiderService) CountActive(_ context.Context, _ string) (int, error) { return 1, nil }

func (stubRiderService) CountAvailable(_ context.Context) (int, error) { return 3, nil }

func (stubRiderService) CountCompletedToday(_ context.Context, _ string) (int, error) { return 0, nil }

type stubAdminService struct {
	summary admin.Summary
	err     error
}

func (s *stubAdminService) Summary(_ context.Context, _ lifecycle.Actor) (admin.Summary, error) {
	return s.summary, s.err
}

func withActor(r *http.Request, actor lifecycle.Actor) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyActor, actor))
}

func withProfile(r *http.Request, p profile.Profile) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), ctxKeyProfile, p))
}

func testServer() *Server {
	return &Server{logger: zerolog.Nop()}
}

func TestHandleLogin_Success(t *testing.T) {
	server := testServer()
	server.authService = &stubAuthService{
		loginResult: auth.LoginResult{
			Token: "tok-123",
			User:  auth.User{ID: "u1", Email: "ada@example.com", Role: lifecycle.RoleResident},
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"ada@example.com","password":"secret-pass"}`))
	rec := httptest.NewRecorder()

	server.handleLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Token != "tok-123" {
		t.Fatalf("unexpected token %q", payload.Token)
	}
}

func TestHandleLogin_InvalidCredentials(t *testing.T) {
	server := testServer()
	server.authService = &stubAuthService{loginErr: auth.ErrInvalidCredentials}

	req := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"x@example.com","password":"bad"}`))
	rec := httptest.NewRecorder()

	server.handleLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_MissingToken(t *testing.T) {
	server := testServer()
	server.authService = &stubAuthService{}
	server.profileService = &stubProfileService{}

	handler := server.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		t.Fatalf("handler must not run without a token")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestRequireAuth_ResolvesApprovalFromProfile(t *testing.T) {
	server := testServer()
	server.authService = &stubAuthService{userID: "u1", role: lifecycle.RoleResident}
	server.profileService = &stubProfileService{
		profile: profile.Profile{ID: "u1", Role: lifecycle.RoleResident, IsApproved: true},
	}

	var got lifecycle.Actor
	handler := server.requireAuth(func(w http.ResponseWriter, r *http.Request) {
		got = actorFrom(r)
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req.Header.Set("Authorization", "Bearer token")
	rec := httptest.NewRecorder()

	handler(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if got.ID != "u1" || !got.Approved {
		t.Fatalf("expected approved actor from profile, got %+v", got)
	}
}

func TestHandleJobClaim_Conflict(t *testing.T) {
	server := testServer()
	server.jobService = &stubJobService{claimErr: lifecycle.ErrAlreadyClaimed}

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/job-1/claim", nil)
	req = withActor(req, lifecycle.Actor{ID: "pro-1", Role: lifecycle.RoleServiceProvider, Approved: true})
	rec := httptest.NewRecorder()

	server.handleJobDetail(rec, req)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d", rec.Code)
	}
}

func TestHandleJobCreate_ValidationError(t *testing.T) {
	server := testServer()
	server.jobService = &stubJobService{createErr: jobs.ErrValidation}

	body := strings.NewReader(`{"residentName":"Ada"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/jobs", body)
	req = withActor(req, lifecycle.Actor{ID: "res-1", Role: lifecycle.RoleResident, Approved: true})
	rec := httptest.NewRecorder()

	server.handleJobs(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestHandleJobAvailable_UsesProfileCategory(t *testing.T) {
	server := testServer()
	server.jobService = &stubJobService{}

	category := "plumber"
	req := httptest.NewRequest(http.MethodGet, "/api/jobs/available", nil)
	req = withActor(req, lifecycle.Actor{ID: "pro-1", Role: lifecycle.RoleServiceProvider, Approved: true})
	req = withProfile(req, profile.Profile{ID: "pro-1", Role: lifecycle.RoleServiceProvider, IsApproved: true, ServiceCategory: &category})
	rec := httptest.NewRecorder()

	server.handleJobDetail(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestHandleJobAvailable_NoCategoryForbidden(t *testing.T) {
	server := testServer()
	server.jobService = &stubJobService{}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs/available", nil)
	req = withActor(req, lifecycle.Actor{ID: "pro-1", Role: lifecycle.RoleServiceProvider, Approved: true})
	rec := httptest.NewRecorder()

	server.handleJobDetail(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleAdminSummary(t *testing.T) {
	server := testServer()
	server.adminService = &stubAdminService{summary: admin.Summary{
		PendingOnboarding: 4,
		PendingPermits:    2,
		PendingJobs:       6,
		PendingDeliveries: 1,
	}}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	req = withActor(req, lifecycle.Actor{ID: "adm-1", Role: lifecycle.RoleAdmin, Approved: true})
	rec := httptest.NewRecorder()

	server.handleAdminSummary(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["pendingOnboarding"] != 4 || payload["pendingPermits"] != 2 ||
		payload["pendingJobs"] != 6 || payload["pendingDeliveries"] != 1 {
		t.Fatalf("unexpected payload %v", payload)
	}
}

func TestHandleAdminSummary_Forbidden(t *testing.T) {
	server := testServer()
	server.adminService = &stubAdminService{err: lifecycle.ErrUnauthorized}

	req := httptest.NewRequest(http.MethodGet, "/api/admin/summary", nil)
	req = withActor(req, lifecycle.Actor{ID: "res-1", Role: lifecycle.RoleResident, Approved: true})
	rec := httptest.NewRecorder()

	server.handleAdminSummary(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestHandleDashboard_Resident(t *testing.T) {
	server := testServer()
	server.jobService = &stubJobService{}
	server.riderService = stubRiderService{}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard", nil)
	req = withActor(req, lifecycle.Actor{ID: "res-1", Role: lifecycle.RoleResident, Approved: true})
	rec := httptest.NewRecorder()

	server.handleDashboard(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload["activeJobRequests"] != 2 || payload["activeDeliveries"] != 1 {
		t.Fatalf("unexpected dashboard payload %v", payload)
	}
}

func TestHandleJobList_Success(t *testing.T) {
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	server := testServer()
	server.jobService = &stubJobService{
		created: jobs.Request{
			ID:              "job-1",
			ResidentID:      "res-1",
			ResidentName:    "Ada Obi",
			ResidentAddress: "12 Palm Close",
			ServiceCategory: jobs.CategoryPlumber,
			Description:     "Leaking sink",
			AvailableTime:   "Evenings",
			Status:          jobs.StatusPending,
			CreatedAt:       now,
			UpdatedAt:       now,
		},
	}

	req := httptest.NewRequest(http.MethodGet, "/api/jobs", nil)
	req = withActor(req, lifecycle.Actor{ID: "res-1", Role: lifecycle.RoleResident, Approved: true})
	rec := httptest.NewRecorder()

	server.handleJobs(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var payload struct {
		Items []jobResponse `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Items) != 1 || payload.Items[0].ID != "job-1" {
		t.Fatalf("unexpected payload %+v", payload)
	}
	if payload.Items[0].CreatedAt != now.Format(time.RFC3339) {
		t.Fatalf("expected createdAt %s, got %s", now.Format(time.RFC3339), payload.Items[0].CreatedAt)
	}
}

func TestHandleUnexpectedError_Is500(t *testing.T) {
	server := testServer()
	server.jobService = &stubJobService{claimErr: errors.New("boom")}

	req := httptest.NewRequest(http.MethodPost, "/api/jobs/job-1/claim", nil)
	req = withActor(req, lifecycle.Actor{ID: "pro-1", Role: lifecycle.RoleServiceProvider, Approved: true})
	rec := httptest.NewRecorder()

	server.handleJobDetail(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
