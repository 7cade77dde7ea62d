package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
	"github.com/aryaseptiaw/giglink_be/internal/services/engagement"
)

type ProposalHandler struct {
	Engagement *engagement.Service
}

func NewProposalHandler(svc *engagement.Service) *ProposalHandler {
	return &ProposalHandler{Engagement: svc}
}

type CreateProposalReq struct {
	JobID             string   `json:"job_id"`
	CoverLetter       string   `json:"cover_letter"`
	ProposedRate      *int64   `json:"proposed_rate,omitempty"`
	EstimatedDuration string   `json:"estimated_duration"`
	Attachments       []string `json:"attachments"`
}

func (h *ProposalHandler) Create(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	var req CreateProposalReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		return badRequest(c, "invalid job_id")
	}

	proposal, err := h.Engagement.CreateProposal(c.Context(), user, engagement.CreateProposalInput{
		JobID:             jobID,
		CoverLetter:       req.CoverLetter,
		ProposedRate:      req.ProposedRate,
		EstimatedDuration: req.EstimatedDuration,
		Attachments:       req.Attachments,
	})
	if err != nil {
		return fail(c, err)
	}
	return created(c, proposal)
}

type UpdateProposalStatusReq struct {
	Status string `json:"status"`
}

// UpdateStatus accepts or rejects a pending proposal. The ownership check
// lives in the service, keyed on the job's client id rather than the role.
func (h *ProposalHandler) UpdateStatus(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	proposalID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid proposal ID")
	}

	var req UpdateProposalStatusReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	proposal, err := h.Engagement.UpdateStatus(c.Context(), proposalID, models.ProposalStatus(req.Status), user.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, proposal)
}

func (h *ProposalHandler) ListForJob(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	jobID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid job ID")
	}

	out, err := h.Engagement.ListForJob(c.Context(), user, jobID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, out)
}

func (h *ProposalHandler) ListMine(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	out, err := h.Engagement.ListByFreelancer(c.Context(), user.ID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, out)
}
