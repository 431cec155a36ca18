package handlers

import (
	"net/http"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/services"

	"github.com/gofiber/fiber/v3"
)

type EvidenceHandler struct {
	evidenceService *services.EvidenceService
}

func NewEvidenceHandler(evidenceService *services.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{evidenceService: evidenceService}
}

func (h *EvidenceHandler) Register(app *fiber.App) {
	api := app.Group("/api")

	storage := api.Group("/storage")
	storage.Put("/evidencias/:siniestro_id/:archivo", h.StoreObject) // PUT /api/storage/evidencias/:siniestro_id/:archivo
	storage.Get("/signed-url", h.SignedURL)                          // GET /api/storage/signed-url?key=

	api.Post("/evidencias", h.CreateEvidence) // POST /api/evidencias
}

// StoreObject writes the raw request body as an evidence object.
func (h *EvidenceHandler) StoreObject(c fiber.Ctx) error {
	// fasthttp reuses the body buffer after the handler returns
	data := append([]byte(nil), c.Body()...)

	key, err := h.evidenceService.StoreObject(c.Context(),
		c.Params("siniestro_id"),
		c.Params("archivo"),
		data,
		c.Get(fiber.HeaderContentType))
	if err != nil {
		return writeServiceError(c, err, "store_object")
	}

	return c.Status(http.StatusOK).JSON(models.StoreObjectResponse{Key: key})
}

func (h *EvidenceHandler) CreateEvidence(c fiber.Ctx) error {
	var req models.CreateEvidenceRequest
	if err := c.Bind().Body(&req); err != nil {
		return badRequest(c, "Cuerpo de la solicitud inválido")
	}

	evidence, err := h.evidenceService.CreateEvidence(c.Context(), req)
	if err != nil {
		return writeServiceError(c, err, "create_evidence")
	}

	return c.Status(http.StatusCreated).JSON(models.CreateEvidenceResponse{Evidence: evidence})
}

func (h *EvidenceHandler) SignedURL(c fiber.Ctx) error {
	key := c.Query("key")
	if key == "" {
		return badRequest(c, "Se requiere key")
	}

	url, err := h.evidenceService.SignedURL(c.Context(), key)
	if err != nil {
		return writeServiceError(c, err, "signed_url")
	}

	return c.Status(http.StatusOK).JSON(models.SignedURLResponse{
		SignedURL: url,
		ExpiresIn: int(h.evidenceService.URLTTL().Seconds()),
	})
}
