package resumes

import (
	"context"
	"errors"
	"strings"
	"time"

	"resume-builder-backend/internal/shared/metrics"
)

// Service contains business logic for resume aggregates. Authorization is
// checked upstream; userID arriving here is trusted to act on its resumes.
type Service struct {
	Repo Repo
}

// NewService constructs a Service.
func NewService(repo Repo) *Service {
	return &Service{Repo: repo}
}

// CreateResume allocates a new aggregate with every sub-collection empty and
// optionally applies a seed as ordinary first writes.
func (s *Service) CreateResume(ctx context.Context, userID, title string, seed *Seed) (Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return Resume{}, ErrInvalidInput
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled resume"
	}

	res, err := s.Repo.Create(ctx, userID, title)
	if err != nil {
		return Resume{}, err
	}

	for kind, items := range seed.sections() {
		saved, revision, err := s.PatchSubcollection(ctx, userID, res.ID, kind, items, UnconditionalWrite)
		if err != nil {
			return Resume{}, err
		}
		res.Sections[kind] = saved
		res.Revisions[kind] = revision
	}
	return res, nil
}

// Get returns one aggregate.
func (s *Service) Get(ctx context.Context, userID string, resumeID int) (Resume, error) {
	if strings.TrimSpace(userID) == "" || resumeID <= 0 {
		return Resume{}, ErrInvalidInput
	}
	return s.Repo.GetByID(ctx, userID, resumeID)
}

// List returns the owner's resumes ordered by their sequential id.
func (s *Service) List(ctx context.Context, userID string) ([]Resume, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrInvalidInput
	}
	return s.Repo.ListByUser(ctx, userID)
}

// PatchSubcollection replaces the named sub-collection wholesale. Items are
// renumbered to their 1-based position before persisting; the authoritative
// renumbered array and new revision are returned for the client to adopt.
func (s *Service) PatchSubcollection(ctx context.Context, userID string, resumeID int, kind Kind, items []Item, expectedRevision int64) ([]Item, int64, error) {
	if strings.TrimSpace(userID) == "" || resumeID <= 0 {
		return nil, 0, ErrInvalidInput
	}
	if _, ok := kindColumns[kind]; !ok {
		return nil, 0, ErrInvalidInput
	}
	if kind.IsSingleton() && len(items) > 1 {
		return nil, 0, ErrInvalidInput
	}

	renumbered := Renumber(items)
	revision, err := s.Repo.ReplaceSubcollection(ctx, userID, resumeID, kind, renumbered, expectedRevision)
	if err != nil {
		if errors.Is(err, ErrConflict) {
			metrics.IncResumeWriteConflict()
		}
		return nil, 0, err
	}
	metrics.IncResumeWrite()
	return renumbered, revision, nil
}

// DeleteSubItem removes one item by its stable uid (or, as a fallback, its
// current display id), renumbers the remainder, and persists. The write is
// conditioned on the revision observed during the read so a concurrent
// sibling edit is not silently clobbered.
func (s *Service) DeleteSubItem(ctx context.Context, userID string, resumeID int, kind Kind, ref string) ([]Item, int64, error) {
	if strings.TrimSpace(userID) == "" || resumeID <= 0 || strings.TrimSpace(ref) == "" {
		return nil, 0, ErrInvalidInput
	}
	if _, ok := kindColumns[kind]; !ok {
		return nil, 0, ErrInvalidInput
	}

	res, err := s.Repo.GetByID(ctx, userID, resumeID)
	if err != nil {
		return nil, 0, err
	}

	items := res.Sections[kind]
	idx := FindItem(items, ref)
	if idx < 0 {
		return nil, 0, ErrNotFound
	}

	remainder := make([]Item, 0, len(items)-1)
	remainder = append(remainder, items[:idx]...)
	remainder = append(remainder, items[idx+1:]...)
	renumbered := Renumber(remainder)

	revision, err := s.Repo.ReplaceSubcollection(ctx, userID, resumeID, kind, renumbered, res.Revisions[kind])
	if err != nil {
		return nil, 0, err
	}
	metrics.IncResumeWrite()
	return renumbered, revision, nil
}

// DeleteResume removes the entire aggregate. Idempotent at this layer.
func (s *Service) DeleteResume(ctx context.Context, userID string, resumeID int) error {
	if strings.TrimSpace(userID) == "" || resumeID <= 0 {
		return ErrInvalidInput
	}
	return s.Repo.Delete(ctx, userID, resumeID)
}

// RecordATSAnalysis stores the snapshot of one analysis run.
func (s *Service) RecordATSAnalysis(ctx context.Context, userID string, resumeID int, score int, matchPercent float64, jobDescription string) (ATSSnapshot, error) {
	if strings.TrimSpace(userID) == "" || resumeID <= 0 {
		return ATSSnapshot{}, ErrInvalidInput
	}
	snap := ATSSnapshot{
		Score:          score,
		MatchPercent:   matchPercent,
		JobDescription: jobDescription,
		AnalyzedAt:     time.Now().UTC(),
	}
	if err := s.Repo.SetATSAnalysis(ctx, userID, resumeID, snap); err != nil {
		return ATSSnapshot{}, err
	}
	return snap, nil
}

// CandidateName resolves the display name from the resume's personal details,
// falling back to the supplied default when none is recorded.
func (s *Service) CandidateName(ctx context.Context, userID string, resumeID int, fallback string) (string, error) {
	res, err := s.Get(ctx, userID, resumeID)
	if err != nil {
		return "", err
	}
	details := res.Sections[KindPersonalDetails]
	if len(details) > 0 {
		if name := strings.TrimSpace(details[0].StringField("fullName")); name != "" {
			return name, nil
		}
	}
	if strings.TrimSpace(fallback) != "" {
		return fallback, nil
	}
	return "Candidate", nil
}
