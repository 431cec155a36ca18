package models

type AnalyzeEvidenceRequest struct {
	EvidenceID string `json:"evidencia_id"`
	ImageURL   string `json:"imagen_url"`
	ClaimID    string `json:"siniestro_id"`
}

type AnalyzeEvidenceResponse struct {
	Success  bool            `json:"success"`
	Analysis *AnalysisResult `json:"analisis"`
	Result   *ParsedAnalysis `json:"resultado"`
}

type QueuedAnalysisResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type GenerateReportRequest struct {
	ClaimID string `json:"siniestro_id"`
}

type GenerateReportResponse struct {
	Success bool       `json:"success"`
	Report  *PreReport `json:"informe"`
}

type ClientLookupResponse struct {
	Client *Client `json:"cliente"`
}

type ReconcileRequest struct {
	ClaimID string `json:"siniestro_id"`
}

type ReconcileResponse struct {
	Success bool     `json:"success"`
	Deleted []string `json:"eliminados"`
}

type CreateEvidenceResponse struct {
	Evidence *Evidence `json:"evidencia"`
}

type StoreObjectResponse struct {
	Key string `json:"key"`
}

type SignedURLResponse struct {
	SignedURL string `json:"signed_url"`
	ExpiresIn int    `json:"expires_in"`
}
