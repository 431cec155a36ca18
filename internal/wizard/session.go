package wizard

import (
	"context"
	"time"

	"github.com/FelipeCgrillo/liquidapp/internal/models"

	"github.com/google/uuid"
)

// Capture is one photo taken for a claim.
type Capture struct {
	Tag         string
	PreviewRef  string
	FileName    string
	ContentType string
	Data        []byte
	Geolocation *models.Geolocation
	CapturedAt  time.Time
}

// Session feeds captures of one claim through the coordinator and keeps the
// state machine in step with each outcome.
type Session struct {
	ClaimID     uuid.UUID
	Mode        models.DeliveryMode
	Coordinator *Coordinator
	Machine     *StateMachine
}

// Submit returns the local id of the capture. On error the placeholder has
// already been removed.
func (s *Session) Submit(ctx context.Context, capture Capture, order int) (string, error) {
	localID := s.Machine.Capture(capture.Tag, capture.PreviewRef)

	var description *string
	if capture.Tag != "" {
		tag := capture.Tag
		description = &tag
	}

	result, err := s.Coordinator.Upload(ctx, capture.Data, UploadOptions{
		ClaimID:     s.ClaimID,
		FileName:    capture.FileName,
		ContentType: capture.ContentType,
		Description: description,
		Geolocation: capture.Geolocation,
		Order:       order,
		CapturedAt:  capture.CapturedAt,
		Mode:        s.Mode,
	})
	if err != nil {
		s.Machine.UploadFailed(localID)
		return localID, err
	}

	if err := s.Machine.UploadSucceeded(localID, result.Evidence); err != nil {
		return localID, err
	}
	if !result.Analyzing {
		s.Machine.ApplyAnalysis(result.Evidence.ID, result.Analysis)
	}
	return localID, nil
}
