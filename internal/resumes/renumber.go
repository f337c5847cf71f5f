package resumes

import "github.com/google/uuid"

// draftKey is the client-only bookkeeping marker a draft attaches to items
// that were never persisted. It is stripped before any write.
const draftKey = "clientDraft"

// Renumber produces the canonical array for a whole-array write: every item's
// display id becomes its 1-based position, items without a stable uid get one
// (assigned exactly once, never reassigned), and client bookkeeping is
// stripped. The input slice is not modified.
func Renumber(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		clean := copyItem(it)
		delete(clean, draftKey)
		clean["id"] = i + 1
		if itemUID(clean) == "" {
			clean["uid"] = uuid.NewString()
		}
		out[i] = clean
	}
	return out
}

// FindItem locates an item by reference: the stable uid first, then the
// position-derived display id. Returns -1 when nothing matches.
func FindItem(items []Item, ref string) int {
	for i, it := range items {
		if uid := itemUID(it); uid != "" && uid == ref {
			return i
		}
	}
	if n, ok := parseDisplayID(ref); ok {
		for i, it := range items {
			if id, ok := itemID(it); ok && id == n {
				return i
			}
		}
	}
	return -1
}

func parseDisplayID(ref string) (int, bool) {
	if ref == "" {
		return 0, false
	}
	n := 0
	for _, r := range ref {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}
