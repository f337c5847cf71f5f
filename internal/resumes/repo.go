package resumes

import "context"

// UnconditionalWrite skips the revision check on a sub-collection write,
// keeping last-write-wins semantics for callers without a revision.
const UnconditionalWrite int64 = -1

// Repo defines persistence operations for resume aggregates.
//
// ReplaceSubcollection replaces exactly one named sub-collection and bumps
// its revision; sibling sub-collections are never read or rewritten. When
// expectedRevision is not UnconditionalWrite and does not match storage, the
// write is rejected with ErrConflict.
type Repo interface {
	Create(ctx context.Context, userID, title string) (Resume, error)
	GetByID(ctx context.Context, userID string, resumeID int) (Resume, error)
	ListByUser(ctx context.Context, userID string) ([]Resume, error)
	ReplaceSubcollection(ctx context.Context, userID string, resumeID int, kind Kind, items []Item, expectedRevision int64) (int64, error)
	SetATSAnalysis(ctx context.Context, userID string, resumeID int, snap ATSSnapshot) error
	Delete(ctx context.Context, userID string, resumeID int) error
}
