package resumes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string]map[int]Resume // userId -> resumeId -> aggregate
	counters map[string]int            // userId -> last allocated resume id
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:     make(map[string]map[int]Resume),
		counters: make(map[string]int),
	}
}

// Create allocates the owner's next sequential resume id and stores an empty
// aggregate. Allocated ids are never reused, even after deletions.
func (r *MemoryRepo) Create(ctx context.Context, userID, title string) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[userID]++
	now := time.Now().UTC()
	res := Resume{
		PK:        uuid.NewString(),
		UserID:    userID,
		ID:        r.counters[userID],
		Title:     title,
		Sections:  emptySections(),
		Revisions: make(map[Kind]int64),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if r.data[userID] == nil {
		r.data[userID] = make(map[int]Resume)
	}
	r.data[userID][res.ID] = cloneResume(res)
	return res, nil
}

// GetByID returns one aggregate for a user.
func (r *MemoryRepo) GetByID(ctx context.Context, userID string, resumeID int) (Resume, error) {
	if err := ctx.Err(); err != nil {
		return Resume{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	res, ok := r.data[userID][resumeID]
	if !ok {
		return Resume{}, ErrNotFound
	}
	return cloneResume(res), nil
}

// ListByUser returns all aggregates for a user ordered by resume id.
func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Resume, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Resume, 0, len(r.data[userID]))
	for _, res := range r.data[userID] {
		out = append(out, cloneResume(res))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// ReplaceSubcollection swaps one sub-collection wholesale and bumps its revision.
func (r *MemoryRepo) ReplaceSubcollection(ctx context.Context, userID string, resumeID int, kind Kind, items []Item, expectedRevision int64) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.data[userID][resumeID]
	if !ok {
		return 0, ErrNotFound
	}
	current := res.Revisions[kind]
	if expectedRevision != UnconditionalWrite && expectedRevision != current {
		return 0, ErrConflict
	}
	res.Sections[kind] = copyItems(items)
	res.Revisions[kind] = current + 1
	res.UpdatedAt = time.Now().UTC()
	r.data[userID][resumeID] = res
	return current + 1, nil
}

// SetATSAnalysis records the latest analysis snapshot on the aggregate.
func (r *MemoryRepo) SetATSAnalysis(ctx context.Context, userID string, resumeID int, snap ATSSnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	res, ok := r.data[userID][resumeID]
	if !ok {
		return ErrNotFound
	}
	res.ATSAnalysis = &snap
	res.UpdatedAt = time.Now().UTC()
	r.data[userID][resumeID] = res
	return nil
}

// Delete removes the aggregate. Deleting an absent resume is not an error.
func (r *MemoryRepo) Delete(ctx context.Context, userID string, resumeID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.data[userID], resumeID)
	return nil
}

func emptySections() map[Kind][]Item {
	out := make(map[Kind][]Item, len(Kinds))
	for _, k := range Kinds {
		out[k] = []Item{}
	}
	return out
}

func cloneResume(res Resume) Resume {
	out := res
	out.Sections = make(map[Kind][]Item, len(res.Sections))
	for k, items := range res.Sections {
		out.Sections[k] = copyItems(items)
	}
	out.Revisions = make(map[Kind]int64, len(res.Revisions))
	for k, rev := range res.Revisions {
		out.Revisions[k] = rev
	}
	if res.ATSAnalysis != nil {
		snap := *res.ATSAnalysis
		out.ATSAnalysis = &snap
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
