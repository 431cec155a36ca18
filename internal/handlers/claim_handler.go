package handlers

import (
	"net/http"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/services"

	"github.com/gofiber/fiber/v3"
)

type ClaimHandler struct {
	claimService  *services.ClaimService
	reportService *services.ReportService
}

func NewClaimHandler(claimService *services.ClaimService, reportService *services.ReportService) *ClaimHandler {
	return &ClaimHandler{
		claimService:  claimService,
		reportService: reportService,
	}
}

func (h *ClaimHandler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Get("/siniestros/:id", h.GetClaimDetail)         // GET /api/siniestros/:id
	api.Post("/generar-preinforme", h.GeneratePreReport) // POST /api/generar-preinforme
}

// GetClaimDetail returns the claim with rollup, evidences, analyses and pre-report.
func (h *ClaimHandler) GetClaimDetail(c fiber.Ctx) error {
	detail, err := h.claimService.GetClaimDetail(c.Context(), c.Params("id"))
	if err != nil {
		return writeServiceError(c, err, "get_claim_detail")
	}
	return c.Status(http.StatusOK).JSON(detail)
}

func (h *ClaimHandler) GeneratePreReport(c fiber.Ctx) error {
	userID := c.Get("X-User-ID")
	if userID == "" {
		return writeServiceError(c, services.ErrUnauthorized, "generate_pre_report")
	}

	var req models.GenerateReportRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	report, err := h.reportService.GenerateReport(c.Context(), req.ClaimID, userID)
	if err != nil {
		return writeServiceError(c, err, "generate_pre_report")
	}

	return c.Status(http.StatusOK).JSON(models.GenerateReportResponse{Success: true, Report: report})
}
