package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/aryaseptiaw/giglink_be/internal/middleware"
	"github.com/aryaseptiaw/giglink_be/internal/models"
	"github.com/aryaseptiaw/giglink_be/internal/services/engagement"
)

type ContractHandler struct {
	Engagement *engagement.Service
}

func NewContractHandler(svc *engagement.Service) *ContractHandler {
	return &ContractHandler{Engagement: svc}
}

func (h *ContractHandler) List(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	out, err := h.Engagement.ListContractsForUser(c.Context(), user)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, out)
}

func (h *ContractHandler) Get(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract ID")
	}

	contract, err := h.Engagement.GetContract(c.Context(), user, contractID)
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contract)
}

type UpdateContractStatusReq struct {
	Status string `json:"status"`
}

func (h *ContractHandler) UpdateStatus(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)

	contractID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return badRequest(c, "invalid contract ID")
	}

	var req UpdateContractStatusReq
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body")
	}

	contract, err := h.Engagement.UpdateContractStatus(c.Context(), user, contractID, models.ContractStatus(req.Status))
	if err != nil {
		return fail(c, err)
	}
	return ok(c, contract)
}
