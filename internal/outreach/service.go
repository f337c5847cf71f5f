package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"resume-builder-backend/internal/resumes"
	"resume-builder-backend/internal/shared/telemetry"
)

// Service runs outreach batches on top of the dispatch engine.
type Service struct {
	Resumes   *resumes.Service
	Directory *Directory
	Mailer    Mailer

	From          string
	Concurrency   int
	TargetTimeout time.Duration

	applier *autoApplier
}

// NewService constructs a Service with a live auto-apply simulator.
func NewService(resumesSvc *resumes.Service, directory *Directory, mailer Mailer, from string, concurrency int, targetTimeout time.Duration) *Service {
	return &Service{
		Resumes:       resumesSvc,
		Directory:     directory,
		Mailer:        mailer,
		From:          from,
		Concurrency:   concurrency,
		TargetTimeout: targetTimeout,
		applier:       newAutoApplier(),
	}
}

func (s *Service) options(onProgress ProgressFunc) Options {
	return Options{
		Concurrency:   s.Concurrency,
		TargetTimeout: s.TargetTimeout,
		OnProgress:    onProgress,
	}
}

// SendToHRContacts emails the candidate's pitch to up to requested directory
// contacts. Per-contact delivery failures land in the report; a batch where
// every send failed is still a successful call.
func (s *Service) SendToHRContacts(ctx context.Context, userID string, resumeID, requested int, jobTitle, artifactURL, fallbackName string, onProgress ProgressFunc) (Report, []HRContact, error) {
	if strings.TrimSpace(userID) == "" || resumeID <= 0 {
		return Report{}, nil, fmt.Errorf("%w: owner and resume id are required", ErrInvalidInput)
	}
	if strings.TrimSpace(jobTitle) == "" {
		return Report{}, nil, fmt.Errorf("%w: job title is required", ErrInvalidInput)
	}

	candidateName, err := s.Resumes.CandidateName(ctx, userID, resumeID, fallbackName)
	if err != nil {
		return Report{}, nil, err
	}

	contacts := s.Directory.Contacts(requested)
	html := ComposeOutreachEmail(candidateName, jobTitle, artifactURL)
	subject := fmt.Sprintf("Application for %s - %s", jobTitle, candidateName)

	action := func(ctx context.Context, contact HRContact) (string, error) {
		err := s.Mailer.Send(ctx, Email{
			From:    s.From,
			To:      contact.Email,
			Subject: subject,
			HTML:    html,
		})
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("sent to %s (%s)", contact.Name, contact.Company), nil
	}

	report, err := Dispatch(ctx, contacts, action, s.options(onProgress))
	if err != nil {
		return Report{}, nil, err
	}

	telemetry.Info("outreach.hr_batch_done", map[string]any{
		"userId":     userID,
		"resumeId":   resumeID,
		"total":      report.Summary.Total,
		"successful": report.Summary.Successful,
		"failed":     report.Summary.Failed,
	})
	return report, contacts, nil
}

// AutoApply runs the simulated application action over the caller-supplied
// postings.
func (s *Service) AutoApply(ctx context.Context, userID string, postings []JobPosting, onProgress ProgressFunc) (Report, error) {
	if strings.TrimSpace(userID) == "" {
		return Report{}, fmt.Errorf("%w: owner is required", ErrInvalidInput)
	}

	report, err := Dispatch(ctx, postings, s.applier.apply, s.options(onProgress))
	if err != nil {
		return Report{}, err
	}

	telemetry.Info("outreach.auto_apply_done", map[string]any{
		"userId":     userID,
		"total":      report.Summary.Total,
		"successful": report.Summary.Successful,
		"failed":     report.Summary.Failed,
	})
	return report, nil
}
