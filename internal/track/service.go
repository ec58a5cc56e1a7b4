// Package track manages the application lifecycle for stored postings.
package track

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/DanWarner00/ai-job-search-platform/internal/model"
	"github.com/DanWarner00/ai-job-search-platform/internal/store"
)

// Store is the storage surface the tracking service needs.
type Store interface {
	GetPosting(id int64) (model.Posting, error)
	GetApplicationByPosting(postingID int64) (model.Application, error)
	CreateApplication(app *model.Application) error
	UpdateApplication(app model.Application) error
	InsertInterview(iv *model.Interview) error
	ListInterviews(applicationID int64) ([]model.Interview, error)
}

// statusRank orders statuses by pipeline progress. ScheduleInterview never
// moves an application backwards along this ranking.
var statusRank = map[model.Status]int{
	model.StatusNotApplied:    0,
	model.StatusNotInterested: 0,
	model.StatusRejected:      0,
	model.StatusApplied:       1,
	model.StatusInterview:     2,
	model.StatusOffer:         3,
}

// Service applies lifecycle rules on top of raw application storage.
// Applications are created lazily: a posting has no application row until
// the first status-changing action touches it.
type Service struct {
	store  Store
	logger *slog.Logger
}

func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// SetStatus sets the application status for a posting, creating the
// application if none exists. Moving to applied stamps the applied date
// once; later transitions keep it.
func (s *Service) SetStatus(postingID int64, status model.Status, reason string) (model.Application, error) {
	if _, ok := statusRank[status]; !ok {
		return model.Application{}, fmt.Errorf("unknown application status %q", status)
	}
	if _, err := s.store.GetPosting(postingID); err != nil {
		return model.Application{}, fmt.Errorf("looking up posting %d: %w", postingID, err)
	}

	app, err := s.store.GetApplicationByPosting(postingID)
	if errors.Is(err, store.ErrNotFound) {
		app = model.Application{PostingID: postingID, Status: status}
		s.applyStatus(&app, status, reason)
		if err := s.store.CreateApplication(&app); err != nil {
			return model.Application{}, err
		}
		s.logger.Info("application created", "posting_id", postingID, "status", status)
		return app, nil
	}
	if err != nil {
		return model.Application{}, err
	}

	s.applyStatus(&app, status, reason)
	if err := s.store.UpdateApplication(app); err != nil {
		return model.Application{}, err
	}
	s.logger.Info("application updated", "posting_id", postingID, "status", status)
	return app, nil
}

func (s *Service) applyStatus(app *model.Application, status model.Status, reason string) {
	app.Status = status
	if status == model.StatusApplied && app.AppliedDate == nil {
		now := time.Now().UTC()
		app.AppliedDate = &now
	}
	if status == model.StatusRejected && reason != "" {
		app.RejectionReason = reason
	}
}

// ScheduleInterview records an interview and advances the owning
// application to interview status. An application already at interview or
// beyond keeps its status; scheduling never regresses progress.
func (s *Service) ScheduleInterview(postingID int64, iv model.Interview) (model.Interview, error) {
	if iv.ScheduledDate.IsZero() {
		return model.Interview{}, fmt.Errorf("interview needs a scheduled date")
	}

	app, err := s.store.GetApplicationByPosting(postingID)
	if errors.Is(err, store.ErrNotFound) {
		app, err = s.SetStatus(postingID, model.StatusInterview, "")
	}
	if err != nil {
		return model.Interview{}, err
	}

	if statusRank[app.Status] < statusRank[model.StatusInterview] {
		app.Status = model.StatusInterview
		if err := s.store.UpdateApplication(app); err != nil {
			return model.Interview{}, err
		}
	}

	iv.ApplicationID = app.ID
	if err := s.store.InsertInterview(&iv); err != nil {
		return model.Interview{}, err
	}
	s.logger.Info("interview scheduled",
		"posting_id", postingID,
		"application_id", app.ID,
		"scheduled", iv.ScheduledDate.Format(time.RFC3339),
	)
	return iv, nil
}

// AttachCoverLetter stores a generated cover letter on the posting's
// application, creating it at not_applied if needed.
func (s *Service) AttachCoverLetter(postingID int64, letter string) (model.Application, error) {
	app, err := s.store.GetApplicationByPosting(postingID)
	if errors.Is(err, store.ErrNotFound) {
		app, err = s.SetStatus(postingID, model.StatusNotApplied, "")
	}
	if err != nil {
		return model.Application{}, err
	}

	app.CoverLetter = letter
	if err := s.store.UpdateApplication(app); err != nil {
		return model.Application{}, err
	}
	return app, nil
}

// Interviews lists the interviews recorded for a posting's application,
// oldest first. A posting without an application has none.
func (s *Service) Interviews(postingID int64) ([]model.Interview, error) {
	app, err := s.store.GetApplicationByPosting(postingID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s.store.ListInterviews(app.ID)
}
