package outreach

import (
	_ "embed"
	"encoding/json"
	"fmt"
)

//go:embed hr_contacts.json
var hrContactsRaw []byte

// HRContact is one curated outreach recipient.
type HRContact struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Company  string `json:"company"`
	Category string `json:"category"`
}

// Directory serves the curated HR contact list in a stable order.
type Directory struct {
	contacts []HRContact
}

// NewDirectory loads the embedded contact list.
func NewDirectory() (*Directory, error) {
	var contacts []HRContact
	if err := json.Unmarshal(hrContactsRaw, &contacts); err != nil {
		return nil, fmt.Errorf("decode hr contacts: %w", err)
	}
	return &Directory{contacts: contacts}, nil
}

// Contacts returns up to requested contacts from the front of the list. A
// request larger than the directory returns everything.
func (d *Directory) Contacts(requested int) []HRContact {
	if requested < 0 {
		requested = 0
	}
	if requested > len(d.contacts) {
		requested = len(d.contacts)
	}
	out := make([]HRContact, requested)
	copy(out, d.contacts[:requested])
	return out
}

// TotalCount reports how many contacts the directory holds.
func (d *Directory) TotalCount() int {
	return len(d.contacts)
}

// CategoryCounts reports how many contacts each category holds.
func (d *Directory) CategoryCounts() map[string]int {
	counts := make(map[string]int)
	for _, c := range d.contacts {
		counts[c.Category]++
	}
	return counts
}
