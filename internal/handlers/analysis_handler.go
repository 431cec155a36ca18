package handlers

import (
	"net/http"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/services"

	"github.com/gofiber/fiber/v3"
)

type AnalysisHandler struct {
	analysisService *services.AnalysisService
}

func NewAnalysisHandler(analysisService *services.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysisService: analysisService}
}

func (h *AnalysisHandler) Register(app *fiber.App) {
	api := app.Group("/api")
	api.Post("/analizar-evidencia", h.AnalyzeEvidence) // strict, waits for the result
	api.Post("/queue-analisis", h.QueueAnalysis)       // lenient, result arrives on the claim channel
}

func (h *AnalysisHandler) AnalyzeEvidence(c fiber.Ctx) error {
	var req models.AnalyzeEvidenceRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	result, parsed, err := h.analysisService.AnalyzeEvidence(c.Context(), req)
	if err != nil {
		return writeServiceError(c, err, "analyze_evidence")
	}

	return c.Status(http.StatusOK).JSON(models.AnalyzeEvidenceResponse{
		Success:  true,
		Analysis: result,
		Result:   parsed,
	})
}

func (h *AnalysisHandler) QueueAnalysis(c fiber.Ctx) error {
	var req models.AnalyzeEvidenceRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	if err := h.analysisService.QueueAnalysis(c.Context(), req); err != nil {
		return writeServiceError(c, err, "queue_analysis")
	}

	return c.Status(http.StatusAccepted).JSON(models.QueuedAnalysisResponse{
		Success: true,
		Message: "Análisis completado en background",
	})
}
