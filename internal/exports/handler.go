package exports

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/resumes"
	"resume-builder-backend/internal/shared/server/middleware"
	"resume-builder-backend/internal/shared/server/respond"
)

const maxUploadSize = 10 << 20 // 10MB

// Handler wires HTTP handlers to the exports service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resumes/:id/exports", h.upload)
	rg.GET("/exports/download", h.download)
}

type uploadResponse struct {
	Artifact
	DownloadURL string `json:"downloadUrl"`
}

func (h *Handler) upload(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	resumeID, err := strconv.Atoi(c.Param("id"))
	if err != nil || resumeID <= 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", "resume id must be a positive integer", nil)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return
	}
	defer file.Close()

	artifact, err := h.Svc.Upload(c.Request.Context(), userID, resumeID, fileHeader.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, resumes.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store artifact", nil)
		}
		return
	}

	respond.JSON(c, http.StatusCreated, uploadResponse{
		Artifact:    artifact,
		DownloadURL: fmt.Sprintf("/api/v1/exports/download?key=%s", url.QueryEscape(artifact.Key)),
	})
}

func (h *Handler) download(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	key := c.Query("key")

	reader, err := h.Svc.Open(c.Request.Context(), userID, key)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case errors.Is(err, ErrForbidden):
			respond.Error(c, http.StatusForbidden, "forbidden", "artifact belongs to another user", nil)
		case errors.Is(err, os.ErrNotExist):
			respond.Error(c, http.StatusNotFound, "not_found", "artifact not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to open artifact", nil)
		}
		return
	}
	defer reader.Close()

	c.Header("Content-Type", "application/octet-stream")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, reader); err != nil {
		// Headers are already written; nothing left to report to the client.
		return
	}
}
