package resumes

import (
	"encoding/json"
	"time"
)

// Kind names one ordered sub-collection within a resume aggregate.
type Kind string

const (
	KindPersonalDetails Kind = "personalDetails"
	KindSummary         Kind = "summary"
	KindExperience      Kind = "experience"
	KindEducation       Kind = "education"
	KindSkills          Kind = "skills"
	KindProjects        Kind = "projects"
	KindCertifications  Kind = "certifications"
)

// Kinds lists every sub-collection in storage order.
var Kinds = []Kind{
	KindPersonalDetails,
	KindSummary,
	KindExperience,
	KindEducation,
	KindSkills,
	KindProjects,
	KindCertifications,
}

// ParseKind validates a sub-collection name from the wire.
func ParseKind(raw string) (Kind, bool) {
	for _, k := range Kinds {
		if string(k) == raw {
			return k, true
		}
	}
	return "", false
}

// IsSingleton reports whether the kind holds at most one item.
// personalDetails and summary keep the array shape for storage uniformity.
func (k Kind) IsSingleton() bool {
	return k == KindPersonalDetails || k == KindSummary
}

// Item is one sub-collection entry. Fields are kind-specific; the store only
// interprets the "id" display position and the stable "uid" key.
type Item map[string]any

// Resume is the aggregate: one document per (owner, resume slot).
type Resume struct {
	PK          string
	UserID      string
	ID          int
	Title       string
	Sections    map[Kind][]Item
	Revisions   map[Kind]int64
	ATSAnalysis *ATSSnapshot
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ATSSnapshot is the last ATS analysis run recorded on the aggregate.
type ATSSnapshot struct {
	Score          int       `json:"score"`
	MatchPercent   float64   `json:"matchPercent"`
	JobDescription string    `json:"jobDescription"`
	AnalyzedAt     time.Time `json:"analyzedAt"`
}

// Seed carries pre-built sub-collection contents (e.g. from a one-shot AI
// generation pass); it is applied as ordinary first writes after create.
type Seed struct {
	Summary    []Item `json:"summary,omitempty"`
	Experience []Item `json:"experience,omitempty"`
	Projects   []Item `json:"projects,omitempty"`
	Skills     []Item `json:"skills,omitempty"`
}

// sections returns the seed contents keyed by kind, skipping empty ones.
func (s *Seed) sections() map[Kind][]Item {
	if s == nil {
		return nil
	}
	out := make(map[Kind][]Item)
	if len(s.Summary) > 0 {
		out[KindSummary] = s.Summary
	}
	if len(s.Experience) > 0 {
		out[KindExperience] = s.Experience
	}
	if len(s.Projects) > 0 {
		out[KindProjects] = s.Projects
	}
	if len(s.Skills) > 0 {
		out[KindSkills] = s.Skills
	}
	return out
}

// itemID extracts the display id from an item, tolerating the numeric types
// JSON decoding produces.
func itemID(it Item) (int, bool) {
	switch v := it["id"].(type) {
	case int:
		return v, true
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return int(n), true
	default:
		return 0, false
	}
}

// itemUID extracts the stable uid from an item.
func itemUID(it Item) string {
	if uid, ok := it["uid"].(string); ok {
		return uid
	}
	return ""
}

// StringField reads a string field from an item, returning "" when absent.
func (it Item) StringField(key string) string {
	if v, ok := it[key].(string); ok {
		return v
	}
	return ""
}

func copyItem(it Item) Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

func copyItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = copyItem(it)
	}
	return out
}
