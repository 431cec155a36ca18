package event

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/config"
	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClaimChannel(t *testing.T) {
	id := uuid.MustParse("6f1c2a8e-8f3b-4a57-9a51-3e2d8c1b7f00")
	assert.Equal(t, "siniestro:6f1c2a8e-8f3b-4a57-9a51-3e2d8c1b7f00:analisis", ClaimChannel(id))
}

func TestDecodeAnalysisEvent(t *testing.T) {
	evt := AnalysisEvent{
		Type:       AnalysisInserted,
		EvidenceID: uuid.New(),
		ClaimID:    uuid.New(),
		Analysis: &models.AnalysisResult{
			Severity:   models.SeveritySevere,
			FraudScore: 0.4,
			FraudLevel: models.FraudMedium,
		},
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
	payload, err := json.Marshal(evt)
	require.NoError(t, err)

	decoded, err := DecodeAnalysisEvent(string(payload))
	require.NoError(t, err)
	assert.Equal(t, evt.EvidenceID, decoded.EvidenceID)
	assert.Equal(t, models.SeveritySevere, decoded.Analysis.Severity)
	assert.True(t, evt.OccurredAt.Equal(decoded.OccurredAt))
}

func TestDecodeAnalysisEvent_Rejects(t *testing.T) {
	_, err := DecodeAnalysisEvent("not json")
	assert.Error(t, err)

	_, err = DecodeAnalysisEvent(`{"type":"analysis.deleted"}`)
	assert.Error(t, err)
}

func TestNewFraudAlert(t *testing.T) {
	result := &models.AnalysisResult{
		ID:              uuid.New(),
		EvidenceID:      uuid.New(),
		ClaimID:         uuid.New(),
		FraudScore:      0.82,
		FraudLevel:      models.FraudCritical,
		FraudIndicators: []string{"bordes editados"},
	}

	alert := NewFraudAlert(result)

	assert.Equal(t, result.ID, alert.AnalysisID)
	assert.Equal(t, models.FraudCritical, alert.Level)
	assert.Equal(t, []string{"bordes editados"}, alert.Indicators)
}

func TestAMQPURI(t *testing.T) {
	parsed, err := amqp.ParseURI(amqpURI(config.RabbitMQConfig{Username: "admin", Password: "p@ss", Host: "mq", Port: "5673"}))
	require.NoError(t, err)
	assert.Equal(t, "mq", parsed.Host)
	assert.Equal(t, 5673, parsed.Port)
	assert.Equal(t, "admin", parsed.Username)
	assert.Equal(t, "p@ss", parsed.Password)

	parsed, err = amqp.ParseURI(amqpURI(config.RabbitMQConfig{Username: "admin", Password: "admin", Host: "localhost", Port: "bad"}))
	require.NoError(t, err)
	assert.Equal(t, 5672, parsed.Port)
}
