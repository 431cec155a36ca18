package handlers

import (
	"net/http"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/FelipeCgrillo/liquidapp/internal/services"

	"github.com/gofiber/fiber/v3"
)

type ClientHandler struct {
	lookupService *services.ClientLookupService
}

func NewClientHandler(lookupService *services.ClientLookupService) *ClientHandler {
	return &ClientHandler{lookupService: lookupService}
}

func (h *ClientHandler) Register(app *fiber.App) {
	app.Get("/api/buscar-cliente", h.FindClient) // GET /api/buscar-cliente?rut=
}

func (h *ClientHandler) FindClient(c fiber.Ctx) error {
	client, err := h.lookupService.FindByRut(c.Context(), c.Query("rut"))
	if err != nil {
		return writeServiceError(c, err, "find_client")
	}
	return c.Status(http.StatusOK).JSON(models.ClientLookupResponse{Client: client})
}
