package outreach_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/outreach"
	"resume-builder-backend/internal/resumes"
)

func newOutreachRouter(t *testing.T) (*gin.Engine, int) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	resumesSvc := resumes.NewService(resumes.NewMemoryRepo())
	res, err := resumesSvc.CreateResume(context.Background(), "user-123", "Backend engineer", nil)
	if err != nil {
		t.Fatalf("CreateResume: %v", err)
	}

	directory, err := outreach.NewDirectory()
	if err != nil {
		t.Fatalf("NewDirectory: %v", err)
	}
	svc := outreach.NewService(resumesSvc, directory, outreach.LogMailer{}, "noreply@resumebuilder.example.com", 4, time.Second)
	handler := outreach.NewHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", "user-123")
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router, res.ID
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHRContactsEndpoint(t *testing.T) {
	router, _ := newOutreachRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/outreach/hr-contacts", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var body struct {
		Total      int            `json:"total"`
		Categories map[string]int `json:"categories"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Total == 0 || len(body.Categories) == 0 {
		t.Fatalf("expected populated directory info, got %+v", body)
	}
}

func TestSendToHREndpoint(t *testing.T) {
	router, resumeID := newOutreachRouter(t)

	resp := postJSON(t, router, "/api/v1/outreach/hr", map[string]any{
		"resumeId": resumeID,
		"jobTitle": "Backend Engineer",
		"count":    3,
	})
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var body struct {
		Results []outreach.Result `json:"results"`
		Summary outreach.Summary  `json:"summary"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := outreach.Summary{Total: 3, Successful: 3, Failed: 0}
	if body.Summary != want {
		t.Fatalf("expected %+v, got %+v", want, body.Summary)
	}
	if len(body.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(body.Results))
	}
}

func TestSendToHREndpointValidation(t *testing.T) {
	router, resumeID := newOutreachRouter(t)

	if resp := postJSON(t, router, "/api/v1/outreach/hr", map[string]any{
		"resumeId": resumeID,
		"jobTitle": "Backend Engineer",
		"count":    0,
	}); resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for zero count, got %d", resp.Code)
	}

	if resp := postJSON(t, router, "/api/v1/outreach/hr", map[string]any{
		"resumeId": 42,
		"jobTitle": "Backend Engineer",
		"count":    3,
	}); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown resume, got %d", resp.Code)
	}
}

func TestAutoApplyEndpointRejectsEmptyPostings(t *testing.T) {
	router, _ := newOutreachRouter(t)

	resp := postJSON(t, router, "/api/v1/outreach/auto-apply", map[string]any{
		"postings": []any{},
	})
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", resp.Code, resp.Body.String())
	}
}
