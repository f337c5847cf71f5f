package resumes

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/shared/server/middleware"
	"resume-builder-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the resumes service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches resume routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes", h.create)
	rg.GET("/resumes", h.list)
	rg.GET("/resumes/:id", h.get)
	rg.DELETE("/resumes/:id", h.delete)
	rg.PUT("/resumes/:id/sections/:kind", h.putSection)
	rg.DELETE("/resumes/:id/sections/:kind/items/:ref", h.deleteSubItem)
	rg.PUT("/resumes/:id/ats-analysis", h.putATSAnalysis)
}

type createRequest struct {
	Title string `json:"title"`
	Seed  *Seed  `json:"seed,omitempty"`
}

func (h *Handler) create(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	res, err := h.Svc.CreateResume(c.Request.Context(), userID, req.Title, req.Seed)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create resume", nil)
		}
		return
	}

	c.Set("resumeId", res.ID)
	respond.JSON(c, http.StatusCreated, toResponse(res))
}

func (h *Handler) list(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	all, err := h.Svc.List(c.Request.Context(), userID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list resumes", nil)
		return
	}

	resp := make([]gin.H, 0, len(all))
	for _, res := range all {
		resp = append(resp, gin.H{
			"resumeId":  res.ID,
			"title":     res.Title,
			"createdAt": res.CreatedAt,
			"updatedAt": res.UpdatedAt,
		})
	}
	respond.JSON(c, http.StatusOK, resp)
}

func (h *Handler) get(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID, ok := resumeIDParam(c)
	if !ok {
		return
	}

	res, err := h.Svc.Get(c.Request.Context(), userID, resumeID)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch resume", nil)
		}
		return
	}

	c.Set("resumeId", res.ID)
	respond.JSON(c, http.StatusOK, toResponse(res))
}

func (h *Handler) delete(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID, ok := resumeIDParam(c)
	if !ok {
		return
	}

	// The store-level delete is idempotent; the endpoint still reports a
	// missing resume for UX purposes.
	if _, err := h.Svc.Get(c.Request.Context(), userID, resumeID); err != nil {
		if errors.Is(err, ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
	}

	if err := h.Svc.DeleteResume(c.Request.Context(), userID, resumeID); err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete resume", nil)
		return
	}
	c.Status(http.StatusNoContent)
}

type putSectionRequest struct {
	Items    []Item `json:"items"`
	Revision *int64 `json:"revision,omitempty"`
}

func (h *Handler) putSection(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID, ok := resumeIDParam(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}

	var req putSectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	expected := UnconditionalWrite
	if req.Revision != nil {
		expected = *req.Revision
	}

	items, revision, err := h.Svc.PatchSubcollection(c.Request.Context(), userID, resumeID, kind, req.Items, expected)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrConflict):
			respond.Error(c, http.StatusConflict, "conflict", "section was modified by another writer; re-fetch and retry", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to save section", nil)
		}
		return
	}

	c.Set("resumeId", resumeID)
	respond.JSON(c, http.StatusOK, SectionResponse{Kind: kind, Items: items, Revision: revision})
}

func (h *Handler) deleteSubItem(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID, ok := resumeIDParam(c)
	if !ok {
		return
	}
	kind, ok := kindParam(c)
	if !ok {
		return
	}
	ref := c.Param("ref")

	items, revision, err := h.Svc.DeleteSubItem(c.Request.Context(), userID, resumeID, kind, ref)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "item not found", nil)
		case errors.Is(err, ErrConflict):
			respond.Error(c, http.StatusConflict, "conflict", "section was modified by another writer; re-fetch and retry", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to delete item", nil)
		}
		return
	}

	c.Set("resumeId", resumeID)
	respond.JSON(c, http.StatusOK, SectionResponse{Kind: kind, Items: items, Revision: revision})
}

type atsAnalysisRequest struct {
	Score          int     `json:"score"`
	MatchPercent   float64 `json:"matchPercent"`
	JobDescription string  `json:"jobDescription"`
}

func (h *Handler) putATSAnalysis(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID, ok := resumeIDParam(c)
	if !ok {
		return
	}

	var req atsAnalysisRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	snap, err := h.Svc.RecordATSAnalysis(c.Request.Context(), userID, resumeID, req.Score, req.MatchPercent, req.JobDescription)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to record analysis", nil)
		}
		return
	}

	respond.JSON(c, http.StatusOK, snap)
}

func resumeIDParam(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func kindParam(c *gin.Context) (Kind, bool) {
	kind, ok := ParseKind(c.Param("kind"))
	if !ok {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unknown section kind", nil)
		return "", false
	}
	return kind, true
}
