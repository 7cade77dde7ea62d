package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	authpkg "github.com/aryaseptiaw/giglink_be/internal/auth"
	"github.com/aryaseptiaw/giglink_be/internal/config"
	"github.com/aryaseptiaw/giglink_be/internal/db"
	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
	"github.com/aryaseptiaw/giglink_be/internal/services/engagement"
	"github.com/aryaseptiaw/giglink_be/internal/services/jobs"
)

// TestEngagementLifecycleIntegration exercises the job -> proposal ->
// contract state machine against a live postgres.
func TestEngagementLifecycleIntegration(t *testing.T) {
	if os.Getenv("RUN_API_INTEGRATION") != "true" {
		t.Skip("set RUN_API_INTEGRATION=true to run this integration test")
	}

	_ = godotenv.Load("../../.env")
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		t.Fatal("DB_DSN is required")
	}

	gdb, err := db.Connect(dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := gdb.AutoMigrate(
		&models.User{}, &models.Session{}, &models.Job{},
		&models.Proposal{}, &models.Contract{},
		&models.Permission{}, &models.SavedJob{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	env := newTestEnv(t, gdb)

	client := env.registerUser(t, "client", models.RoleClient)
	freelancer1 := env.registerUser(t, "freelancer1", models.RoleFreelancer)
	freelancer2 := env.registerUser(t, "freelancer2", models.RoleFreelancer)

	// Client posts a job.
	var jobID string
	{
		status, body := env.request(t, "POST", "/api/jobs", client.token, map[string]any{
			"title":       "Build a billing service",
			"description": "Go backend for invoicing",
			"category":    "backend",
			"budget_min":  500,
			"budget_max":  1500,
			"skills":      []string{"golang", "postgres"},
		})
		if status != http.StatusCreated {
			t.Fatalf("create job status = %d: %s", status, body)
		}
		job := decodeData[models.Job](t, body)
		if job.Status != models.JobStatusActive || job.ProposalCount != 0 {
			t.Fatalf("new job should be active with 0 proposals, got %+v", job)
		}
		jobID = job.ID.String()
	}

	// A client cannot submit a proposal.
	{
		status, _ := env.request(t, "POST", "/api/proposals", client.token, map[string]any{
			"job_id":       jobID,
			"cover_letter": "hire me",
		})
		if status != http.StatusForbidden {
			t.Fatalf("client proposal status = %d, want 403", status)
		}
	}

	// Proposals against a missing job 404.
	{
		status, _ := env.request(t, "POST", "/api/proposals", freelancer1.token, map[string]any{
			"job_id":       uuid.NewString(),
			"cover_letter": "hire me",
		})
		if status != http.StatusNotFound {
			t.Fatalf("missing-job proposal status = %d, want 404", status)
		}
	}

	// Freelancer 1 bids; the job's denormalized count follows.
	var proposal1 models.Proposal
	{
		status, body := env.request(t, "POST", "/api/proposals", freelancer1.token, map[string]any{
			"job_id":        jobID,
			"cover_letter":  "I can deliver this in two weeks",
			"proposed_rate": 900,
		})
		if status != http.StatusCreated {
			t.Fatalf("proposal status = %d: %s", status, body)
		}
		proposal1 = decodeData[models.Proposal](t, body)
		if proposal1.Status != models.ProposalStatusPending {
			t.Fatalf("new proposal status = %s, want pending", proposal1.Status)
		}
		if proposal1.Job == nil || proposal1.Job.ProposalCount != 1 {
			t.Fatalf("proposal should echo job with post-insert count 1, got %+v", proposal1.Job)
		}
	}

	// A second pending bid by the same freelancer conflicts.
	{
		status, _ := env.request(t, "POST", "/api/proposals", freelancer1.token, map[string]any{
			"job_id":       jobID,
			"cover_letter": "me again",
		})
		if status != http.StatusConflict {
			t.Fatalf("duplicate bid status = %d, want 409", status)
		}
	}

	// Freelancer 2 bids too; count must include both.
	var proposal2 models.Proposal
	{
		status, body := env.request(t, "POST", "/api/proposals", freelancer2.token, map[string]any{
			"job_id":       jobID,
			"cover_letter": "available immediately",
		})
		if status != http.StatusCreated {
			t.Fatalf("second proposal status = %d: %s", status, body)
		}
		proposal2 = decodeData[models.Proposal](t, body)
		if proposal2.Job.ProposalCount != 2 {
			t.Fatalf("proposal count = %d, want 2", proposal2.Job.ProposalCount)
		}
	}

	// Freelancer 2 cannot decide proposal 1 (wrong role entirely).
	{
		status, _ := env.request(t, "PATCH", "/api/proposals/"+proposal1.ID.String()+"/status",
			freelancer2.token, map[string]any{"status": "rejected"})
		if status != http.StatusForbidden {
			t.Fatalf("freelancer decide status = %d, want 403", status)
		}
	}

	// Another client (not the owner) cannot decide it either.
	otherClient := env.registerUser(t, "otherclient", models.RoleClient)
	{
		status, _ := env.request(t, "PATCH", "/api/proposals/"+proposal1.ID.String()+"/status",
			otherClient.token, map[string]any{"status": "accepted"})
		if status != http.StatusForbidden {
			t.Fatalf("non-owner decide status = %d, want 403", status)
		}
	}

	// The owner accepts proposal 1: exactly one contract appears.
	{
		status, body := env.request(t, "PATCH", "/api/proposals/"+proposal1.ID.String()+"/status",
			client.token, map[string]any{"status": "accepted"})
		if status != http.StatusOK {
			t.Fatalf("accept status = %d: %s", status, body)
		}
		accepted := decodeData[models.Proposal](t, body)
		if accepted.Status != models.ProposalStatusAccepted {
			t.Fatalf("proposal status = %s, want accepted", accepted.Status)
		}
	}

	var contract models.Contract
	if err := gdb.First(&contract, "proposal_id = ?", proposal1.ID).Error; err != nil {
		t.Fatalf("contract not created: %v", err)
	}
	if contract.ClientID != client.id || contract.FreelancerID != freelancer1.id {
		t.Fatalf("contract parties wrong: %+v", contract)
	}
	if contract.Status != models.ContractStatusActive {
		t.Fatalf("contract status = %s, want active", contract.Status)
	}

	// Retrying the accept conflicts and leaves the stored state alone.
	{
		status, _ := env.request(t, "PATCH", "/api/proposals/"+proposal1.ID.String()+"/status",
			client.token, map[string]any{"status": "accepted"})
		if status != http.StatusConflict {
			t.Fatalf("re-accept status = %d, want 409", status)
		}

		var count int64
		gdb.Model(&models.Contract{}).Where("proposal_id = ?", proposal1.ID).Count(&count)
		if count != 1 {
			t.Fatalf("contract count after retry = %d, want exactly 1", count)
		}

		var stored models.Proposal
		gdb.First(&stored, "id = ?", proposal1.ID)
		if stored.Status != models.ProposalStatusAccepted {
			t.Fatalf("stored proposal status = %s, want accepted", stored.Status)
		}
	}

	// Accepting one proposal leaves siblings pending, untouched.
	{
		var sibling models.Proposal
		gdb.First(&sibling, "id = ?", proposal2.ID)
		if sibling.Status != models.ProposalStatusPending {
			t.Fatalf("sibling proposal status = %s, want pending", sibling.Status)
		}
	}

	// The owner rejects the sibling: no contract appears, and the rejection
	// is terminal.
	{
		status, body := env.request(t, "PATCH", "/api/proposals/"+proposal2.ID.String()+"/status",
			client.token, map[string]any{"status": "rejected"})
		if status != http.StatusOK {
			t.Fatalf("reject status = %d: %s", status, body)
		}
		rejected := decodeData[models.Proposal](t, body)
		if rejected.Status != models.ProposalStatusRejected {
			t.Fatalf("proposal status = %s, want rejected", rejected.Status)
		}

		var count int64
		gdb.Model(&models.Contract{}).Where("proposal_id = ?", proposal2.ID).Count(&count)
		if count != 0 {
			t.Fatalf("rejection must not create a contract, found %d", count)
		}

		status, _ = env.request(t, "PATCH", "/api/proposals/"+proposal2.ID.String()+"/status",
			client.token, map[string]any{"status": "accepted"})
		if status != http.StatusConflict {
			t.Fatalf("accept after reject status = %d, want 409", status)
		}

		var stored models.Proposal
		gdb.First(&stored, "id = ?", proposal2.ID)
		if stored.Status != models.ProposalStatusRejected {
			t.Fatalf("stored proposal status = %s, want rejected", stored.Status)
		}
	}

	// The freelancer sees the contract; an uninvolved freelancer does not.
	{
		status, body := env.request(t, "GET", "/api/contracts", freelancer1.token, nil)
		if status != http.StatusOK {
			t.Fatalf("list contracts status = %d", status)
		}
		list := decodeData[[]models.Contract](t, body)
		if len(list) == 0 {
			t.Fatal("freelancer should see its contract")
		}

		status, _ = env.request(t, "GET", "/api/contracts/"+contract.ID.String(), freelancer2.token, nil)
		if status != http.StatusForbidden {
			t.Fatalf("stranger contract read status = %d, want 403", status)
		}
	}

	// Closing the job stops new proposals but leaves the contract alone.
	{
		status, _ := env.request(t, "PATCH", "/api/jobs/"+jobID+"/close", client.token, nil)
		if status != http.StatusOK {
			t.Fatalf("close job status = %d", status)
		}

		freelancer3 := env.registerUser(t, "freelancer3", models.RoleFreelancer)
		status, _ = env.request(t, "POST", "/api/proposals", freelancer3.token, map[string]any{
			"job_id":       jobID,
			"cover_letter": "late bid",
		})
		if status != http.StatusBadRequest {
			t.Fatalf("proposal on closed job status = %d, want 400", status)
		}

		var after models.Contract
		gdb.First(&after, "id = ?", contract.ID)
		if after.Status != models.ContractStatusActive {
			t.Fatalf("closing job should not touch the contract, status = %s", after.Status)
		}
	}
}

// TestSessionExpiryIntegration pins the expiry boundary: a session expiring
// exactly now is invalid, one strictly in the future is valid.
func TestSessionExpiryIntegration(t *testing.T) {
	if os.Getenv("RUN_API_INTEGRATION") != "true" {
		t.Skip("set RUN_API_INTEGRATION=true to run this integration test")
	}

	_ = godotenv.Load("../../.env")
	gdb, err := db.Connect(os.Getenv("DB_DSN"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	env := newTestEnv(t, gdb)
	user := env.registerUser(t, "expiry", models.RoleFreelancer)

	store := authpkg.NewSessionStore(gdb, nil, 24*time.Hour)
	ctx := context.Background()

	// Expired-exactly-now token.
	expired := models.Session{UserID: user.id, Token: mustToken(t), ExpiresAt: time.Now()}
	if err := gdb.Create(&expired).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if u, _, err := store.Validate(ctx, expired.Token); err != nil || u != nil {
		t.Fatalf("boundary token: user=%v err=%v, want nil/nil", u, err)
	}

	// Strictly-future token.
	live := models.Session{UserID: user.id, Token: mustToken(t), ExpiresAt: time.Now().Add(time.Minute)}
	if err := gdb.Create(&live).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	u, sess, err := store.Validate(ctx, live.Token)
	if err != nil || u == nil {
		t.Fatalf("live token rejected: user=%v err=%v", u, err)
	}
	if sess.UserID != user.id {
		t.Fatalf("session user = %s, want %s", sess.UserID, user.id)
	}

	// Deleting twice is not an error.
	if err := store.Delete(ctx, live.Token); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, live.Token); err != nil {
		t.Fatalf("second delete should be idempotent: %v", err)
	}

	// A suspended user's otherwise-valid session resolves to nothing.
	if err := gdb.Model(&models.User{}).Where("id = ?", user.id).
		Update("status", models.UserStatusSuspended).Error; err != nil {
		t.Fatalf("suspend user: %v", err)
	}
	again := models.Session{UserID: user.id, Token: mustToken(t), ExpiresAt: time.Now().Add(time.Minute)}
	if err := gdb.Create(&again).Error; err != nil {
		t.Fatalf("seed session: %v", err)
	}
	if u, _, err := store.Validate(ctx, again.Token); err != nil || u != nil {
		t.Fatalf("suspended user session: user=%v err=%v, want nil/nil", u, err)
	}
}

// TestSavedJobsIntegration covers the duplicate-save conflict and idempotent
// removal.
func TestSavedJobsIntegration(t *testing.T) {
	if os.Getenv("RUN_API_INTEGRATION") != "true" {
		t.Skip("set RUN_API_INTEGRATION=true to run this integration test")
	}

	_ = godotenv.Load("../../.env")
	gdb, err := db.Connect(os.Getenv("DB_DSN"))
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	env := newTestEnv(t, gdb)
	client := env.registerUser(t, "savedclient", models.RoleClient)
	freelancer := env.registerUser(t, "savedfree", models.RoleFreelancer)

	_, body := env.request(t, "POST", "/api/jobs", client.token, map[string]any{
		"title":       "Logo design",
		"description": "Need a logo",
		"category":    "design",
	})
	job := decodeData[models.Job](t, body)

	status, _ := env.request(t, "POST", "/api/saved-jobs", freelancer.token, map[string]any{"job_id": job.ID.String()})
	if status != http.StatusCreated {
		t.Fatalf("save status = %d, want 201", status)
	}

	status, _ = env.request(t, "POST", "/api/saved-jobs", freelancer.token, map[string]any{"job_id": job.ID.String()})
	if status != http.StatusConflict {
		t.Fatalf("duplicate save status = %d, want 409", status)
	}

	status, _ = env.request(t, "DELETE", "/api/saved-jobs/"+job.ID.String(), freelancer.token, nil)
	if status != http.StatusOK {
		t.Fatalf("delete status = %d, want 200", status)
	}
	status, _ = env.request(t, "DELETE", "/api/saved-jobs/"+job.ID.String(), freelancer.token, nil)
	if status != http.StatusOK {
		t.Fatalf("second delete status = %d, want 200 (idempotent)", status)
	}
}

// ---- test wiring ----

type testEnv struct {
	app *fiber.App
	gdb *gorm.DB
}

type testUser struct {
	id    uuid.UUID
	token string
}

// newTestEnv wires the same handler graph as cmd/api, minus Redis, against
// the live test database.
func newTestEnv(t *testing.T, gdb *gorm.DB) *testEnv {
	t.Helper()

	cfg := config.Config{
		AppEnv:           "test",
		SessionTTL:       24 * time.Hour,
		ResetTokenSecret: "integration-test-secret",
		ResetTokenTTL:    30 * time.Minute,
	}

	sessions := authpkg.NewSessionStore(gdb, nil, cfg.SessionTTL)
	jobSvc := jobs.NewService(gdb)
	engagementSvc := engagement.NewService(gdb)

	authH := NewAuthHandler(gdb, sessions, cfg)
	jobH := NewJobHandler(jobSvc)
	proposalH := NewProposalHandler(engagementSvc)
	contractH := NewContractHandler(engagementSvc)
	savedH := NewSavedJobHandler(gdb)

	app := fiber.New()
	api := app.Group("/api")

	api.Post("/auth/register", authH.Register)
	api.Post("/auth/login", authH.Login)
	api.Get("/jobs", jobH.ListActive)
	api.Get("/jobs/:id", jobH.Get)

	protected := api.Group("/", middleware.Session(sessions))
	protected.Post("/auth/logout", authH.Logout)
	protected.Post("/jobs", middleware.RequireRoles("client"), jobH.Create)
	protected.Patch("/jobs/:id/close", middleware.RequireRoles("client", "admin"), jobH.Close)
	protected.Get("/jobs/:id/proposals", middleware.RequireRoles("client", "admin"), proposalH.ListForJob)
	protected.Patch("/proposals/:id/status", middleware.RequireRoles("client"), proposalH.UpdateStatus)
	protected.Post("/proposals", middleware.RequireRoles("freelancer"), proposalH.Create)
	protected.Get("/proposals/me", middleware.RequireRoles("freelancer"), proposalH.ListMine)
	protected.Post("/saved-jobs", middleware.RequireRoles("freelancer"), savedH.Save)
	protected.Get("/saved-jobs", middleware.RequireRoles("freelancer"), savedH.List)
	protected.Delete("/saved-jobs/:jobId", middleware.RequireRoles("freelancer"), savedH.Delete)
	protected.Get("/contracts", contractH.List)
	protected.Get("/contracts/:id", contractH.Get)
	protected.Patch("/contracts/:id/status", contractH.UpdateStatus)

	return &testEnv{app: app, gdb: gdb}
}

func (e *testEnv) registerUser(t *testing.T, prefix string, role models.Role) testUser {
	t.Helper()

	email := fmt.Sprintf("%s_%d@example.com", prefix, time.Now().UnixNano())
	status, body := e.request(t, "POST", "/api/auth/register", "", map[string]any{
		"name":     prefix,
		"email":    email,
		"password": "secret123",
		"role":     string(role),
	})
	if status != http.StatusCreated {
		t.Fatalf("register %s status = %d: %s", prefix, status, body)
	}

	var envelope struct {
		Data struct {
			User  models.AuthenticatedUser `json:"user"`
			Token string                   `json:"token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode register response: %v", err)
	}
	return testUser{id: envelope.Data.User.ID, token: envelope.Data.Token}
}

func (e *testEnv) request(t *testing.T, method, path, token string, payload any) (int, []byte) {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, body)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := e.app.Test(req, 30_000)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	out := new(bytes.Buffer)
	if _, err := out.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read response: %v", err)
	}
	return resp.StatusCode, out.Bytes()
}

func decodeData[T any](t *testing.T, body []byte) T {
	t.Helper()

	var envelope struct {
		Data T `json:"data"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		t.Fatalf("decode response %s: %v", body, err)
	}
	return envelope.Data
}

func mustToken(t *testing.T) string {
	t.Helper()
	token, err := authpkg.NewSessionToken()
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	return token
}
