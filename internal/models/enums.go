package models

type Severity string

const (
	SeverityMinor     Severity = "leve"
	SeverityModerate  Severity = "moderado"
	SeveritySevere    Severity = "grave"
	SeverityTotalLoss Severity = "perdida_total"
)

// Rank orders severities from 1 (leve) to 4 (perdida_total). Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityMinor:
		return 1
	case SeverityModerate:
		return 2
	case SeveritySevere:
		return 3
	case SeverityTotalLoss:
		return 4
	default:
		return 0
	}
}

func (s Severity) Valid() bool {
	return s.Rank() > 0
}

type FraudLevel string

const (
	FraudLow      FraudLevel = "bajo"
	FraudMedium   FraudLevel = "medio"
	FraudHigh     FraudLevel = "alto"
	FraudCritical FraudLevel = "critico"
)

func (l FraudLevel) Valid() bool {
	switch l {
	case FraudLow, FraudMedium, FraudHigh, FraudCritical:
		return true
	}
	return false
}

// Alerting levels are escalated to the back office.
func (l FraudLevel) Alerting() bool {
	return l == FraudHigh || l == FraudCritical
}

type ClaimStatus string

const (
	ClaimDraft    ClaimStatus = "borrador"
	ClaimInReview ClaimStatus = "en_revision"
	ClaimApproved ClaimStatus = "aprobado"
	ClaimRejected ClaimStatus = "rechazado"
	ClaimClosed   ClaimStatus = "cerrado"
)

type ReportStatus string

const (
	ReportDraft    ReportStatus = "borrador"
	ReportReviewed ReportStatus = "revisado"
	ReportSigned   ReportStatus = "firmado"
)

// DeliveryMode selects how the caller waits for an analysis.
type DeliveryMode string

const (
	DeliverySync   DeliveryMode = "sync"
	DeliveryQueued DeliveryMode = "queued"
)
