package outreach

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/resumes"
	"resume-builder-backend/internal/shared/server/middleware"
	"resume-builder-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the outreach service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches outreach routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/outreach/hr-contacts", h.hrContacts)
	rg.POST("/outreach/hr", h.sendToHR)
	rg.POST("/outreach/auto-apply", h.autoApply)
}

func (h *Handler) hrContacts(c *gin.Context) {
	respond.JSON(c, http.StatusOK, gin.H{
		"total":      h.Svc.Directory.TotalCount(),
		"categories": h.Svc.Directory.CategoryCounts(),
	})
}

type sendToHRRequest struct {
	ResumeID    int    `json:"resumeId"`
	JobTitle    string `json:"jobTitle"`
	Count       int    `json:"count"`
	ArtifactURL string `json:"artifactUrl"`
}

type dispatchResponse struct {
	Results []Result `json:"results"`
	Summary Summary  `json:"summary"`
}

func (h *Handler) sendToHR(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req sendToHRRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	report, _, err := h.Svc.SendToHRContacts(
		c.Request.Context(),
		userID,
		req.ResumeID,
		req.Count,
		req.JobTitle,
		req.ArtifactURL,
		middleware.UserNameFromContext(c),
		nil,
	)
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrNoTargets):
			respond.Error(c, http.StatusBadRequest, "validation_error", "no contacts requested", nil)
		case errors.Is(err, ErrInvalidInput), errors.Is(err, resumes.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run outreach batch", nil)
		}
		return
	}

	c.Set("dispatchTotal", report.Summary.Total)
	respond.JSON(c, http.StatusOK, dispatchResponse{Results: report.Results, Summary: report.Summary})
}

type autoApplyRequest struct {
	Postings []JobPosting `json:"postings"`
}

func (h *Handler) autoApply(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)

	var req autoApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	report, err := h.Svc.AutoApply(c.Request.Context(), userID, req.Postings, nil)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoTargets):
			respond.Error(c, http.StatusBadRequest, "validation_error", "posting list is empty", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to run auto-apply batch", nil)
		}
		return
	}

	c.Set("dispatchTotal", report.Summary.Total)
	respond.JSON(c, http.StatusOK, dispatchResponse{Results: report.Results, Summary: report.Summary})
}
