package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/FelipeCgrillo/liquidapp/internal/ai"
	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
)

type ReportWriter interface {
	Upsert(ctx context.Context, claimID uuid.UUID, markdown, modelName string, generatedBy *string) (*models.PreReport, error)
}

type ClaimDetailLoader interface {
	GetClaimDetail(ctx context.Context, claimID string) (*models.ClaimDetail, error)
}

// ReportService drafts the liquidation pre-report for a claim.
type ReportService struct {
	details ClaimDetailLoader
	text    ai.TextModel
	reports ReportWriter
}

func NewReportService(details ClaimDetailLoader, text ai.TextModel, reports ReportWriter) *ReportService {
	return &ReportService{details: details, text: text, reports: reports}
}

func (s *ReportService) GenerateReport(ctx context.Context, claimID, userID string) (*models.PreReport, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrUnauthorized
	}
	if strings.TrimSpace(claimID) == "" {
		return nil, fmt.Errorf("%w: se requiere siniestro_id", ErrValidation)
	}
	if s.text == nil {
		return nil, ErrNotConfigured
	}

	detail, err := s.details.GetClaimDetail(ctx, claimID)
	if err != nil {
		return nil, err
	}

	completion, err := s.text.Complete(ctx, ai.ReportSystemPrompt, BuildReportPrompt(detail))
	if err != nil {
		slog.Error("Report model call failed", "claim_id", claimID, "error", err)
		return nil, fmt.Errorf("%w: %w", ErrExternalCall, err)
	}

	generatedBy := userID
	report, err := s.reports.Upsert(ctx, detail.ID, completion.Text, completion.Model, &generatedBy)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	slog.Info("Pre-report generated",
		"claim_id", detail.ID,
		"version", report.Version,
		"model", completion.Model,
		"tokens", completion.TokensUsed)
	return report, nil
}

// BuildReportPrompt renders the claim, each evidence's latest analysis and
// the rollup into the markdown request sent to the text model.
func BuildReportPrompt(detail *models.ClaimDetail) string {
	var b strings.Builder

	b.WriteString("Genera un pre-informe técnico de liquidación de siniestro automotriz en formato Markdown.\n\n")

	b.WriteString("DATOS DEL SINIESTRO:\n")
	fmt.Fprintf(&b, "- Número: %s\n", detail.ClaimNumber)
	fmt.Fprintf(&b, "- Fecha: %s\n", detail.IncidentDate.Format("02-01-2006"))
	fmt.Fprintf(&b, "- Tipo: %s\n", detail.IncidentType)
	fmt.Fprintf(&b, "- Patente: %s\n", detail.Plate)
	fmt.Fprintf(&b, "- Vehículo: %s\n", vehicleLabel(&detail.Claim))
	fmt.Fprintf(&b, "- Asegurado: %s\n", detail.InsuredName)
	fmt.Fprintf(&b, "- Póliza: %s\n", valueOr(detail.PolicyNumber, "No especificada"))
	fmt.Fprintf(&b, "- Ubicación: %s\n\n", locationLabel(&detail.Claim))

	b.WriteString("ANÁLISIS DE EVIDENCIAS:\n")
	if len(detail.Evidences) == 0 {
		b.WriteString("Sin evidencias analizadas\n")
	}
	for i, ev := range detail.Evidences {
		writeEvidence(&b, i+1, ev)
	}

	b.WriteString("\nRESUMEN IA:\n")
	severity := "No determinada"
	if detail.SeverityOverall != nil {
		severity = string(*detail.SeverityOverall)
	}
	fraud := 0.0
	if detail.FraudScoreOverall != nil {
		fraud = *detail.FraudScoreOverall
	}
	fmt.Fprintf(&b, "- Severidad General: %s\n", severity)
	fmt.Fprintf(&b, "- Score Fraude General: %.0f%%\n", fraud*100)
	fmt.Fprintf(&b, "- Costo Total Estimado: $%s - $%s CLP\n\n", FormatCLP(detail.CostEstimateMin), FormatCLP(detail.CostEstimateMax))

	b.WriteString(`Genera el pre-informe con las siguientes secciones en Markdown:
1. ## Resumen Ejecutivo
2. ## Datos del Siniestro
3. ## Evaluación de Daños
4. ## Análisis Antifraude
5. ## Estimación de Costos
6. ## Recomendación del Liquidador IA
7. ## Observaciones y Notas

El informe debe ser técnico, profesional y en español. Incluye tablas donde sea apropiado.
Al final incluye: "---
*Pre-informe generado automáticamente por LiquidApp IA. Requiere revisión y firma de liquidador autorizado.*"`)

	return b.String()
}

func writeEvidence(b *strings.Builder, n int, ev models.EvidenceWithAnalyses) {
	latest := ev.Latest()
	if latest == nil {
		fmt.Fprintf(b, "Evidencia %d: Sin análisis\n", n)
		return
	}

	parts := "No especificado"
	if len(latest.DamagedParts) > 0 {
		parts = strings.Join(latest.DamagedParts, ", ")
	}

	fmt.Fprintf(b, "\nEvidencia %d:\n", n)
	fmt.Fprintf(b, "- Descripción: %s\n", valueOr(ev.Description, "Sin descripción"))
	fmt.Fprintf(b, "- Severidad: %s\n", latest.Severity)
	fmt.Fprintf(b, "- Score Fraude: %.0f%% (%s)\n", latest.FraudScore*100, latest.FraudLevel)
	fmt.Fprintf(b, "- Partes dañadas: %s\n", parts)
	fmt.Fprintf(b, "- Daños: %s\n", latest.DamageDescription)
	fmt.Fprintf(b, "- Costo estimado: $%s - $%s CLP\n", FormatCLP(latest.CostMin), FormatCLP(latest.CostMax))
	if len(latest.FraudIndicators) > 0 {
		fmt.Fprintf(b, "- ⚠️ Indicadores de fraude: %s\n", strings.Join(latest.FraudIndicators, ", "))
	}
}

func vehicleLabel(c *models.Claim) string {
	var fields []string
	if c.Make != nil && *c.Make != "" {
		fields = append(fields, *c.Make)
	}
	if c.Model != nil && *c.Model != "" {
		fields = append(fields, *c.Model)
	}
	if c.Year != nil {
		fields = append(fields, strconv.Itoa(*c.Year))
	}
	return strings.Join(fields, " ")
}

func locationLabel(c *models.Claim) string {
	if c.Address != nil && *c.Address != "" {
		return *c.Address
	}
	if c.Latitude != nil && c.Longitude != nil {
		return fmt.Sprintf("%v, %v", *c.Latitude, *c.Longitude)
	}
	return "No especificada"
}

func valueOr(v *string, fallback string) string {
	if v == nil || *v == "" {
		return fallback
	}
	return *v
}

// FormatCLP groups thousands with dots, as pesos are written in Chile.
func FormatCLP(amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	digits := strconv.FormatInt(amount, 10)

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return sign + b.String()
}
