package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/services/jobs"
)

type JobHandler struct {
	Jobs *jobs.Service
}

func NewJobHandler(svc *jobs.Service) *JobHandler {
	return &JobHandler{Jobs: svc}
}

type CreateJobReq struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	BudgetType  string   `json:"budget_type"`
	BudgetMin   int64    `json:"budget_min"`
	BudgetMax   int64    `json:"budget_max"`
	Duration    string   `json:"duration"`
	Skills      []string `json:"skills"`
}

func (h *JobHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreateJobReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	job, err := h.Jobs.Create(c.Context(), user.ID, jobs.CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		BudgetType:  req.BudgetType,
		BudgetMin:   req.BudgetMin,
		BudgetMax:   req.BudgetMax,
		Duration:    req.Duration,
		Skills:      req.Skills,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, job)
}

func (h *JobHandler) ListActive(c *fiber.Ctx) error {
	out, err := h.Jobs.ListActive(c.Context())
	if err != nil {
		return fail(c, err)
	}
	return ok(c, out)
}

func (h *JobHandler) ListMine(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	out, err := h.Jobs.ListByClient(c.Context(), user.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, out)
}

func (h *JobHandler) Get(c *fiber.Ctx) error {
	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job ID")
	}

	job, err := h.Jobs.GetByID(c.Context(), jobID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, job)
}

func (h *JobHandler) Close(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job ID")
	}

	job, err := h.Jobs.Close(c.Context(), jobID, user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, job)
}
