package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/FelipeCgrillo/liquidapp/internal/analysis"
	"github.com/FelipeCgrillo/liquidapp/internal/services"
	"github.com/FelipeCgrillo/liquidapp/internal/utils"

	"github.com/gofiber/fiber/v3"
)

// writeServiceError maps a service error kind to its HTTP status. Client
// errors echo the message, server errors keep details in the log.
func writeServiceError(c fiber.Ctx, err error, action string) error {
	switch {
	case errors.Is(err, services.ErrValidation):
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("VALIDATION_ERROR", err.Error()))
	case errors.Is(err, services.ErrNotConfigured):
		return c.Status(http.StatusBadRequest).JSON(
			utils.CreateErrorResponse("NOT_CONFIGURED", "Proveedor de IA no configurado"))
	case errors.Is(err, services.ErrUnauthorized):
		return c.Status(http.StatusUnauthorized).JSON(
			utils.CreateErrorResponse("UNAUTHORIZED", "No autorizado"))
	case errors.Is(err, services.ErrNotFound):
		return c.Status(http.StatusNotFound).JSON(
			utils.CreateErrorResponse("NOT_FOUND", err.Error()))
	case errors.Is(err, services.ErrQueueFull):
		return c.Status(http.StatusServiceUnavailable).JSON(
			utils.CreateErrorResponse("QUEUE_FULL", "Cola de análisis llena, reintente más tarde"))
	}

	slog.Error("Request failed", "action", action, "error", err)

	switch {
	case errors.Is(err, analysis.ErrUnparseableResponse):
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("AI_RESPONSE_UNPARSEABLE", "Respuesta de IA no parseable"))
	case errors.Is(err, analysis.ErrSchemaViolation):
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("AI_RESPONSE_INVALID", "Respuesta de IA incompleta o inválida"))
	case errors.Is(err, services.ErrExternalCall):
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("AI_CALL_FAILED", "Error al consultar el modelo de IA"))
	case errors.Is(err, services.ErrPersistence):
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("PERSISTENCE_FAILED", "Error al guardar los datos"))
	default:
		return c.Status(http.StatusInternalServerError).JSON(
			utils.CreateErrorResponse("INTERNAL_ERROR", "Error interno del servidor"))
	}
}

func badRequest(c fiber.Ctx, message string) error {
	return c.Status(http.StatusBadRequest).JSON(
		utils.CreateErrorResponse("INVALID_REQUEST", message))
}
