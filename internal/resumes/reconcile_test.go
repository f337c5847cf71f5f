package resumes

import (
	"context"
	"errors"
	"testing"
)

func newPersistedSection(t *testing.T, svc *Service, userID string, resumeID int, kind Kind, items []Item) ([]Item, int64) {
	t.Helper()
	saved, revision, err := svc.PatchSubcollection(context.Background(), userID, resumeID, kind, items, UnconditionalWrite)
	if err != nil {
		t.Fatalf("seed section: %v", err)
	}
	return saved, revision
}

func TestDraftAddIsLocalOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	res := mustCreate(t, svc, "user-1")

	draft := NewDraft(svc, "user-1", res.ID, KindExperience, nil, 0)
	draft.Add(Item{"title": "New role"})

	if len(draft.Items()) != 1 {
		t.Fatalf("expected 1 local item")
	}

	got, err := svc.Get(ctx, "user-1", res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if len(got.Sections[KindExperience]) != 0 {
		t.Fatalf("add must not contact storage")
	}
}

func TestDraftRemoveUnpersistedItemIsLocalOnly(t *testing.T) {
	svc := newTestService()
	res := mustCreate(t, svc, "user-1")

	persisted, revision := newPersistedSection(t, svc, "user-1", res.ID, KindExperience, []Item{{"title": "Kept"}})

	draft := NewDraft(svc, "user-1", res.ID, KindExperience, persisted, revision)
	draft.Add(Item{"title": "Never saved"})

	if err := draft.Remove(context.Background(), 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if len(draft.Items()) != 1 {
		t.Fatalf("expected draft-only item removed locally")
	}

	got, err := svc.Get(context.Background(), "user-1", res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Revisions[KindExperience] != revision {
		t.Fatalf("local removal must not write to storage")
	}
}

func TestDraftRemovePersistedItemAdoptsRenumberedArray(t *testing.T) {
	svc := newTestService()
	res := mustCreate(t, svc, "user-1")

	persisted, revision := newPersistedSection(t, svc, "user-1", res.ID, KindExperience, []Item{
		{"title": "First"}, {"title": "Second"}, {"title": "Third"},
	})

	draft := NewDraft(svc, "user-1", res.ID, KindExperience, persisted, revision)
	if err := draft.Remove(context.Background(), 1); err != nil {
		t.Fatalf("Remove: %v", err)
	}

	items := draft.Items()
	assertIDs(t, items, 1, 2)
	if items[1].StringField("title") != "Third" {
		t.Fatalf("expected Third renumbered to position 2")
	}
	if draft.Revision() != revision+1 {
		t.Fatalf("expected draft to adopt fresh revision")
	}

	// Local ids now match persisted ids exactly.
	got, err := svc.Get(context.Background(), "user-1", res.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	persistedNow := got.Sections[KindExperience]
	for i := range items {
		wantID, _ := itemID(persistedNow[i])
		gotID, _ := itemID(items[i])
		if wantID != gotID || itemUID(items[i]) != itemUID(persistedNow[i]) {
			t.Fatalf("local copy diverged from persisted copy at %d", i)
		}
	}
}

func TestDraftSaveStripsBookkeepingAndAdoptsIDs(t *testing.T) {
	svc := newTestService()
	res := mustCreate(t, svc, "user-1")

	draft := NewDraft(svc, "user-1", res.ID, KindProjects, nil, 0)
	draft.Add(Item{"name": "alpha"})
	draft.Add(Item{"name": "beta"})

	if err := draft.Save(context.Background()); err != nil {
		t.Fatalf("Save: %v", err)
	}

	items := draft.Items()
	assertIDs(t, items, 1, 2)
	for i, it := range items {
		if _, ok := it[draftKey]; ok {
			t.Fatalf("item %d kept client bookkeeping after save", i)
		}
		if itemUID(it) == "" {
			t.Fatalf("item %d missing server-assigned uid", i)
		}
	}

	// A second save with the adopted revision succeeds.
	if err := draft.Save(context.Background()); err != nil {
		t.Fatalf("second Save: %v", err)
	}
}

type failingWriter struct {
	err error
}

func (f failingWriter) PatchSubcollection(ctx context.Context, userID string, resumeID int, kind Kind, items []Item, expectedRevision int64) ([]Item, int64, error) {
	return nil, 0, f.err
}

func (f failingWriter) DeleteSubItem(ctx context.Context, userID string, resumeID int, kind Kind, ref string) ([]Item, int64, error) {
	return nil, 0, f.err
}

func TestDraftFailedSaveLeavesLocalCopyUntouched(t *testing.T) {
	writeErr := errors.New("store write failure")
	draft := NewDraft(failingWriter{err: writeErr}, "user-1", 1, KindSkills, []Item{
		{"id": 1, "uid": "uid-a", "name": "Go"},
	}, 3)
	draft.Add(Item{"name": "Rust"})

	before := draft.Items()
	if err := draft.Save(context.Background()); !errors.Is(err, writeErr) {
		t.Fatalf("expected write error surfaced, got %v", err)
	}

	after := draft.Items()
	if len(after) != len(before) {
		t.Fatalf("failed save changed local copy length")
	}
	if draft.Revision() != 3 {
		t.Fatalf("failed save changed adopted revision")
	}
	if _, ok := after[1][draftKey]; !ok {
		t.Fatalf("failed save must keep the draft marker for retry")
	}
}

func TestDraftFailedRemoveLeavesLocalCopyUntouched(t *testing.T) {
	removeErr := errors.New("delete failed")
	draft := NewDraft(failingWriter{err: removeErr}, "user-1", 1, KindSkills, []Item{
		{"id": 1, "uid": "uid-a", "name": "Go"},
		{"id": 2, "uid": "uid-b", "name": "Postgres"},
	}, 1)

	if err := draft.Remove(context.Background(), 0); !errors.Is(err, removeErr) {
		t.Fatalf("expected delete error surfaced, got %v", err)
	}
	if len(draft.Items()) != 2 {
		t.Fatalf("failed remove changed local copy")
	}
}

func TestDraftRemoveOutOfRange(t *testing.T) {
	draft := NewDraft(failingWriter{}, "user-1", 1, KindSkills, nil, 0)
	if err := draft.Remove(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
