package analysis

import (
	"strconv"
	"testing"

	"github.com/FelipeCgrillo/liquidapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const completeResponse = `{
  "antifraude": {
    "score": 0.12,
    "nivel": "bajo",
    "indicadores": ["reflejo inconsistente"],
    "justificacion": "Daño coherente con el relato"
  },
  "triage": {
    "severidad": "moderado",
    "partes_danadas": ["parachoque_delantero", "capot"],
    "descripcion": "Abolladura frontal"
  },
  "costos": {
    "min": 350000,
    "max": 520000,
    "desglose": [
      {"parte": "capot", "costo_min": 200000, "costo_max": 300000},
      {"parte": "parachoque_delantero", "costo_min": 150000, "costo_max": 220000}
    ]
  }
}`

func TestParse_CompleteResponseKeepsEveryField(t *testing.T) {
	parsed, err := Parse(completeResponse, Strict)
	require.NoError(t, err)

	assert.Equal(t, 0.12, parsed.Fraud.Score)
	assert.Equal(t, models.FraudLow, parsed.Fraud.Level)
	assert.Equal(t, []string{"reflejo inconsistente"}, parsed.Fraud.Indicators)
	assert.Equal(t, "Daño coherente con el relato", parsed.Fraud.Justification)
	assert.Equal(t, models.SeverityModerate, parsed.Triage.Severity)
	assert.Equal(t, []string{"parachoque_delantero", "capot"}, parsed.Triage.DamagedParts)
	assert.Equal(t, "Abolladura frontal", parsed.Triage.Description)
	assert.Equal(t, int64(350000), parsed.Costs.Min)
	assert.Equal(t, int64(520000), parsed.Costs.Max)
	require.Len(t, parsed.Costs.Breakdown, 2)
	assert.Equal(t, models.CostItem{Part: "capot", CostMin: 200000, CostMax: 300000}, parsed.Costs.Breakdown[0])
}

func TestParse_MissingIndicatorsDefaultsToEmptyList(t *testing.T) {
	raw := `{
	  "antifraude": {"score": 0.1, "nivel": "bajo", "justificacion": "ok"},
	  "triage": {"severidad": "leve", "partes_danadas": [], "descripcion": "rayón"},
	  "costos": {"min": 0, "max": 10000, "desglose": []}
	}`

	for _, mode := range []Mode{Strict, Lenient} {
		parsed, err := Parse(raw, mode)
		require.NoError(t, err, mode.String())
		assert.NotNil(t, parsed.Fraud.Indicators, mode.String())
		assert.Empty(t, parsed.Fraud.Indicators, mode.String())
	}
}

func TestParse_FraudLevelFallback(t *testing.T) {
	tests := []struct {
		score float64
		want  models.FraudLevel
	}{
		{0.6, models.FraudHigh},
		{0.8, models.FraudCritical},
		{0.1, models.FraudLow},
		{0.3, models.FraudMedium},
	}

	for _, tt := range tests {
		raw := `{"antifraude":{"score":` + strconv.FormatFloat(tt.score, 'f', -1, 64) + `},"triage":{"severidad":"leve"},"costos":{"min":1,"max":2}}`
		parsed, err := Parse(raw, Strict)
		require.NoError(t, err)
		assert.Equal(t, tt.want, parsed.Fraud.Level, "score %v", tt.score)
	}
}

func TestParse_ModelLevelTakesPrecedence(t *testing.T) {
	raw := `{"antifraude":{"score":0.9,"nivel":"medio"},"triage":{"severidad":"grave"},"costos":{"min":1,"max":2}}`
	parsed, err := Parse(raw, Strict)
	require.NoError(t, err)
	assert.Equal(t, models.FraudMedium, parsed.Fraud.Level)
}

func TestParse_UnknownLevelFallsBackToScore(t *testing.T) {
	raw := `{"antifraude":{"score":0.55,"nivel":"sospechoso"},"triage":{"severidad":"grave"},"costos":{"min":1,"max":2}}`
	parsed, err := Parse(raw, Strict)
	require.NoError(t, err)
	assert.Equal(t, models.FraudHigh, parsed.Fraud.Level)
}

func TestParse_NonJSONIsUnparseable(t *testing.T) {
	for _, raw := range []string{"", "Lo siento, no puedo analizar la imagen.", "[1,2]", `{"antifraude":`} {
		for _, mode := range []Mode{Strict, Lenient} {
			_, err := Parse(raw, mode)
			assert.ErrorIs(t, err, ErrUnparseableResponse, "%q in %s mode", raw, mode)
			assert.True(t, IsParseError(err))
		}
	}
}

func TestParse_StripsMarkdownFence(t *testing.T) {
	parsed, err := Parse("```json\n"+completeResponse+"\n```", Strict)
	require.NoError(t, err)
	assert.Equal(t, models.SeverityModerate, parsed.Triage.Severity)
}

func TestParse_StrictRejectsMissingRequiredFields(t *testing.T) {
	cases := map[string]string{
		"no score":         `{"antifraude":{},"triage":{"severidad":"leve"},"costos":{"min":1,"max":2}}`,
		"no triage":        `{"antifraude":{"score":0.2},"costos":{"min":1,"max":2}}`,
		"no costs":         `{"antifraude":{"score":0.2},"triage":{"severidad":"leve"}}`,
		"bad severity":     `{"antifraude":{"score":0.2},"triage":{"severidad":"catastrofico"},"costos":{"min":1,"max":2}}`,
		"score over one":   `{"antifraude":{"score":1.4},"triage":{"severidad":"leve"},"costos":{"min":1,"max":2}}`,
		"min above max":    `{"antifraude":{"score":0.2},"triage":{"severidad":"leve"},"costos":{"min":5,"max":2}}`,
		"wrong score type": `{"antifraude":{"score":"alto"},"triage":{"severidad":"leve"},"costos":{"min":1,"max":2}}`,
		"empty object":     `{}`,
	}

	for name, raw := range cases {
		_, err := Parse(raw, Strict)
		assert.ErrorIs(t, err, ErrSchemaViolation, name)
	}
}

func TestParse_LenientDefaultsMissingFields(t *testing.T) {
	parsed, err := Parse(`{}`, Lenient)
	require.NoError(t, err)

	assert.Equal(t, 0.0, parsed.Fraud.Score)
	assert.Equal(t, models.FraudLow, parsed.Fraud.Level)
	assert.Equal(t, []string{}, parsed.Fraud.Indicators)
	assert.Equal(t, "", parsed.Fraud.Justification)
	assert.Equal(t, models.SeverityMinor, parsed.Triage.Severity)
	assert.Equal(t, []string{}, parsed.Triage.DamagedParts)
	assert.Equal(t, int64(0), parsed.Costs.Min)
	assert.Equal(t, int64(0), parsed.Costs.Max)
	assert.Equal(t, models.CostBreakdown{}, parsed.Costs.Breakdown)
}

func TestParse_RoundsFractionalCosts(t *testing.T) {
	raw := `{"antifraude":{"score":0.2},"triage":{"severidad":"leve"},"costos":{"min":1000.4,"max":1999.6}}`
	parsed, err := Parse(raw, Strict)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), parsed.Costs.Min)
	assert.Equal(t, int64(2000), parsed.Costs.Max)
}

func TestModeFor(t *testing.T) {
	assert.Equal(t, Strict, ModeFor(models.DeliverySync))
	assert.Equal(t, Lenient, ModeFor(models.DeliveryQueued))
}

func TestParse_TopLevelMustBeObject(t *testing.T) {
	for _, raw := range []string{"null", "0.9", `"ok"`, "true", "```json\nnull\n```"} {
		for _, mode := range []Mode{Strict, Lenient} {
			parsed, err := Parse(raw, mode)
			assert.ErrorIs(t, err, ErrUnparseableResponse, "%q in %s mode", raw, mode)
			assert.Nil(t, parsed)
		}
	}
}

func TestParse_OversizedCosts(t *testing.T) {
	raw := `{"antifraude":{"score":0.2},"triage":{"severidad":"leve"},"costos":{"min":1e30,"max":1e30}}`

	_, err := Parse(raw, Strict)
	assert.ErrorIs(t, err, ErrSchemaViolation)

	parsed, err := Parse(raw, Lenient)
	require.NoError(t, err)
	assert.Equal(t, int64(maxCost), parsed.Costs.Min)
	assert.Equal(t, int64(maxCost), parsed.Costs.Max)
	assert.Positive(t, parsed.Costs.Max)
}

func TestParse_StrictRejectsOversizedBreakdown(t *testing.T) {
	raw := `{"antifraude":{"score":0.2},"triage":{"severidad":"leve"},
		"costos":{"min":1,"max":2,"desglose":[{"parte":"capot","costo_min":1,"costo_max":1e25}]}}`

	_, err := Parse(raw, Strict)
	assert.ErrorIs(t, err, ErrSchemaViolation)

	parsed, err := Parse(raw, Lenient)
	require.NoError(t, err)
	require.Len(t, parsed.Costs.Breakdown, 1)
	assert.Equal(t, int64(maxCost), parsed.Costs.Breakdown[0].CostMax)
}
