package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
)

// Mode controls how missing sub-fields of a model answer are treated.
type Mode int

const (
	// Strict rejects answers lacking required fields. Used by the synchronous endpoint.
	Strict Mode = iota
	// Lenient substitutes zero values for missing fields. Used by the queued endpoint.
	Lenient
)

func (m Mode) String() string {
	if m == Lenient {
		return "lenient"
	}
	return "strict"
}

// ModeFor maps a delivery mode to its parsing mode.
func ModeFor(delivery models.DeliveryMode) Mode {
	if delivery == models.DeliveryQueued {
		return Lenient
	}
	return Strict
}

type wireFraud struct {
	Score         *float64 `json:"score"`
	Level         *string  `json:"nivel"`
	Indicators    []string `json:"indicadores"`
	Justification *string  `json:"justificacion"`
}

type wireTriage struct {
	Severity     *string  `json:"severidad"`
	DamagedParts []string `json:"partes_danadas"`
	Description  *string  `json:"descripcion"`
}

type wireCostItem struct {
	Part    string   `json:"parte"`
	CostMin *float64 `json:"costo_min"`
	CostMax *float64 `json:"costo_max"`
}

type wireCosts struct {
	Min       *float64       `json:"min"`
	Max       *float64       `json:"max"`
	Breakdown []wireCostItem `json:"desglose"`
}

type wireAnalysis struct {
	Fraud  *wireFraud  `json:"antifraude"`
	Triage *wireTriage `json:"triage"`
	Costs  *wireCosts  `json:"costos"`
}

// CleanJSON strips markdown code fences some models wrap around JSON.
func CleanJSON(raw string) string {
	text := strings.TrimSpace(raw)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	}
	return strings.TrimSpace(text)
}

// Parse turns raw model text into a ParsedAnalysis. List fields are always
// non-nil and the fraud level is always resolved.
func Parse(raw string, mode Mode) (*models.ParsedAnalysis, error) {
	text := CleanJSON(raw)
	if text == "" {
		return nil, fmt.Errorf("%w: empty response", ErrUnparseableResponse)
	}
	if !strings.HasPrefix(text, "{") {
		return nil, fmt.Errorf("%w: top-level value is not an object", ErrUnparseableResponse)
	}

	var wire wireAnalysis
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && strings.HasPrefix(text, "{") {
			return nil, fmt.Errorf("%w: field %s has type %s", ErrSchemaViolation, typeErr.Field, typeErr.Value)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnparseableResponse, err)
	}

	if mode == Strict {
		if err := validateStrict(&wire); err != nil {
			return nil, err
		}
	}

	return normalize(&wire), nil
}

func validateStrict(w *wireAnalysis) error {
	var missing []string
	if w.Fraud == nil || w.Fraud.Score == nil {
		missing = append(missing, "antifraude.score")
	}
	if w.Triage == nil || w.Triage.Severity == nil {
		missing = append(missing, "triage.severidad")
	}
	if w.Costs == nil || w.Costs.Min == nil {
		missing = append(missing, "costos.min")
	}
	if w.Costs == nil || w.Costs.Max == nil {
		missing = append(missing, "costos.max")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrSchemaViolation, strings.Join(missing, ", "))
	}

	if score := *w.Fraud.Score; score < 0 || score > 1 || math.IsNaN(score) {
		return fmt.Errorf("%w: antifraude.score %v outside [0,1]", ErrSchemaViolation, score)
	}
	if sev := models.Severity(*w.Triage.Severity); !sev.Valid() {
		return fmt.Errorf("%w: unknown triage.severidad %q", ErrSchemaViolation, sev)
	}
	if *w.Costs.Min < 0 || *w.Costs.Max < 0 {
		return fmt.Errorf("%w: negative cost estimate", ErrSchemaViolation)
	}
	if !costInRange(*w.Costs.Min) || !costInRange(*w.Costs.Max) {
		return fmt.Errorf("%w: cost estimate above %d", ErrSchemaViolation, int64(maxCost))
	}
	for _, item := range w.Costs.Breakdown {
		for _, v := range []*float64{item.CostMin, item.CostMax} {
			if v != nil && !costInRange(*v) {
				return fmt.Errorf("%w: costos.desglose %q outside [0,%d]", ErrSchemaViolation, item.Part, int64(maxCost))
			}
		}
	}
	if *w.Costs.Min > *w.Costs.Max {
		return fmt.Errorf("%w: costos.min greater than costos.max", ErrSchemaViolation)
	}
	return nil
}

func normalize(w *wireAnalysis) *models.ParsedAnalysis {
	out := &models.ParsedAnalysis{
		Fraud: models.FraudAssessment{Indicators: []string{}},
		Triage: models.DamageTriage{
			Severity:     models.SeverityMinor,
			DamagedParts: []string{},
		},
		Costs: models.CostEstimate{Breakdown: models.CostBreakdown{}},
	}

	var providedLevel models.FraudLevel
	if f := w.Fraud; f != nil {
		if f.Score != nil && !math.IsNaN(*f.Score) {
			out.Fraud.Score = math.Min(math.Max(*f.Score, 0), 1)
		}
		if f.Level != nil {
			providedLevel = models.FraudLevel(strings.ToLower(strings.TrimSpace(*f.Level)))
		}
		if f.Indicators != nil {
			out.Fraud.Indicators = f.Indicators
		}
		if f.Justification != nil {
			out.Fraud.Justification = *f.Justification
		}
	}
	out.Fraud.Level = ResolveFraudLevel(providedLevel, out.Fraud.Score)

	if t := w.Triage; t != nil {
		if t.Severity != nil {
			if sev := models.Severity(*t.Severity); sev.Valid() {
				out.Triage.Severity = sev
			}
		}
		if t.DamagedParts != nil {
			out.Triage.DamagedParts = t.DamagedParts
		}
		if t.Description != nil {
			out.Triage.Description = *t.Description
		}
	}

	if c := w.Costs; c != nil {
		out.Costs.Min = toCost(c.Min)
		out.Costs.Max = toCost(c.Max)
		for _, item := range c.Breakdown {
			out.Costs.Breakdown = append(out.Costs.Breakdown, models.CostItem{
				Part:    item.Part,
				CostMin: toCost(item.CostMin),
				CostMax: toCost(item.CostMax),
			})
		}
	}

	return out
}

// maxCost bounds a single estimate in pesos so that claim rollups summing
// many of them stay inside int64.
const maxCost = float64(math.MaxInt64 / 1024)

func costInRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= maxCost
}

// toCost rounds to whole pesos, maps absent or negative values to zero and
// clamps oversized ones to maxCost.
func toCost(v *float64) int64 {
	if v == nil || math.IsNaN(*v) || *v < 0 {
		return 0
	}
	if *v > maxCost {
		return int64(maxCost)
	}
	return int64(math.Round(*v))
}
