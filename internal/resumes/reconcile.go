package resumes

import (
	"context"
	"fmt"
)

// SectionWriter is the authoritative surface a draft reconciles against.
// *Service satisfies it.
type SectionWriter interface {
	PatchSubcollection(ctx context.Context, userID string, resumeID int, kind Kind, items []Item, expectedRevision int64) ([]Item, int64, error)
	DeleteSubItem(ctx context.Context, userID string, resumeID int, kind Kind, ref string) ([]Item, int64, error)
}

// Draft is a client-held working copy of one sub-collection. Between saves
// its item ids may be stale placeholders and must not be trusted for
// cross-section references; after any successful Save or Remove the local
// copy exactly matches the persisted, renumbered array.
type Draft struct {
	writer   SectionWriter
	userID   string
	resumeID int
	kind     Kind
	revision int64
	items    []Item
}

// NewDraft starts a draft from the last persisted array and its revision.
func NewDraft(writer SectionWriter, userID string, resumeID int, kind Kind, persisted []Item, revision int64) *Draft {
	return &Draft{
		writer:   writer,
		userID:   userID,
		resumeID: resumeID,
		kind:     kind,
		revision: revision,
		items:    copyItems(persisted),
	}
}

// Items returns the working copy.
func (d *Draft) Items() []Item {
	return copyItems(d.items)
}

// Revision returns the revision the draft last adopted from storage.
func (d *Draft) Revision() int64 {
	return d.revision
}

// Add appends a templated item with a placeholder id and the client-only
// draft marker. Storage is not contacted.
func (d *Draft) Add(template Item) {
	item := copyItem(template)
	item[draftKey] = true
	item["id"] = len(d.items) + 1
	d.items = append(d.items, item)
}

// Remove deletes the item at index. Items never persisted are dropped from
// the local copy only; persisted items are deleted server-side and the
// returned renumbered array replaces the local copy. On failure the local
// copy is left untouched.
func (d *Draft) Remove(ctx context.Context, index int) error {
	if index < 0 || index >= len(d.items) {
		return fmt.Errorf("%w: index %d out of range", ErrInvalidInput, index)
	}

	item := d.items[index]
	if isDraftOnly(item) {
		d.items = append(d.items[:index], d.items[index+1:]...)
		return nil
	}

	ref := itemUID(item)
	if ref == "" {
		if id, ok := itemID(item); ok {
			ref = fmt.Sprintf("%d", id)
		}
	}
	canonical, revision, err := d.writer.DeleteSubItem(ctx, d.userID, d.resumeID, d.kind, ref)
	if err != nil {
		return err
	}
	d.items = copyItems(canonical)
	d.revision = revision
	return nil
}

// Save sends the whole working copy, stripped of client bookkeeping, and
// adopts the authoritative renumbered array so subsequent edits reference
// fresh ids. On failure the local copy is left untouched.
func (d *Draft) Save(ctx context.Context) error {
	outgoing := make([]Item, len(d.items))
	for i, it := range d.items {
		clean := copyItem(it)
		delete(clean, draftKey)
		outgoing[i] = clean
	}

	canonical, revision, err := d.writer.PatchSubcollection(ctx, d.userID, d.resumeID, d.kind, outgoing, d.revision)
	if err != nil {
		return err
	}
	d.items = copyItems(canonical)
	d.revision = revision
	return nil
}

func isDraftOnly(it Item) bool {
	marked, ok := it[draftKey].(bool)
	return ok && marked
}
