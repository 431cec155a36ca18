package handlers

import (
	"net/http"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/services"

	"github.com/gofiber/fiber/v3"
)

type AdminHandler struct {
	reconciliationService *services.ReconciliationService
}

func NewAdminHandler(reconciliationService *services.ReconciliationService) *AdminHandler {
	return &AdminHandler{reconciliationService: reconciliationService}
}

func (h *AdminHandler) Register(app *fiber.App) {
	admin := app.Group("/api/admin")
	admin.Post("/reconciliar", h.Reconcile) // POST /api/admin/reconciliar
}

// Reconcile runs the orphan sweep now. An empty body sweeps the whole bucket.
func (h *AdminHandler) Reconcile(c fiber.Ctx) error {
	var req models.ReconcileRequest
	if len(c.Body()) > 0 {
		if err := c.Bind().Body(&req); err != nil {
			return badRequest(c, "Cuerpo de la solicitud inválido")
		}
	}

	deleted, err := h.reconciliationService.Reconcile(c.Context(), req.ClaimID)
	if err != nil {
		return writeServiceError(c, err, "reconcile_storage")
	}

	return c.Status(http.StatusOK).JSON(models.ReconcileResponse{Success: true, Deleted: deleted})
}
