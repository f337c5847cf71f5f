package resumes

import "time"

// ResumeResponse is the outward-facing representation of an aggregate.
type ResumeResponse struct {
	ResumeID    int              `json:"resumeId"`
	Title       string           `json:"title"`
	Sections    map[Kind][]Item  `json:"sections"`
	Revisions   map[Kind]int64   `json:"revisions"`
	ATSAnalysis *ATSSnapshot     `json:"atsAnalysis,omitempty"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// SectionResponse is returned after any sub-collection write so the client
// can adopt the renumbered array and fresh revision.
type SectionResponse struct {
	Kind     Kind   `json:"kind"`
	Items    []Item `json:"items"`
	Revision int64  `json:"revision"`
}

func toResponse(res Resume) ResumeResponse {
	return ResumeResponse{
		ResumeID:    res.ID,
		Title:       res.Title,
		Sections:    res.Sections,
		Revisions:   res.Revisions,
		ATSAnalysis: res.ATSAnalysis,
		CreatedAt:   res.CreatedAt,
		UpdatedAt:   res.UpdatedAt,
	}
}
