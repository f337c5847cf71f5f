package resumes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"resume-builder-backend/internal/resumes"
)

func newTestRouter(userID string) *gin.Engine {
	gin.SetMode(gin.TestMode)

	svc := resumes.NewService(resumes.NewMemoryRepo())
	handler := resumes.NewHandler(svc)

	router := gin.New()
	router.Use(func(c *gin.Context) {
		c.Set("userId", userID)
		c.Next()
	})
	api := router.Group("/api/v1")
	handler.RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestResumeSectionLifecycle(t *testing.T) {
	router := newTestRouter("user-123")

	createResp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{"title": "Backend engineer"})
	if createResp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", createResp.Code, createResp.Body.String())
	}
	var created resumes.ResumeResponse
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ResumeID != 1 {
		t.Fatalf("expected resumeId 1, got %d", created.ResumeID)
	}

	base := fmt.Sprintf("/api/v1/resumes/%d", created.ResumeID)

	putResp := doJSON(t, router, http.MethodPut, base+"/sections/experience", map[string]any{
		"items": []map[string]any{
			{"title": "First"},
			{"title": "Second"},
			{"title": "Third"},
		},
	})
	if putResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", putResp.Code, putResp.Body.String())
	}
	var section resumes.SectionResponse
	if err := json.NewDecoder(putResp.Body).Decode(&section); err != nil {
		t.Fatalf("decode section response: %v", err)
	}
	if len(section.Items) != 3 || section.Revision != 1 {
		t.Fatalf("unexpected section response: %+v", section)
	}

	delResp := doJSON(t, router, http.MethodDelete, base+"/sections/experience/items/2", nil)
	if delResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", delResp.Code, delResp.Body.String())
	}
	if err := json.NewDecoder(delResp.Body).Decode(&section); err != nil {
		t.Fatalf("decode delete response: %v", err)
	}
	if len(section.Items) != 2 {
		t.Fatalf("expected 2 items after delete, got %d", len(section.Items))
	}
	for i, item := range section.Items {
		id, ok := item["id"].(float64)
		if !ok || int(id) != i+1 {
			t.Fatalf("item %d: expected id %d, got %v", i, i+1, item["id"])
		}
	}
	if section.Items[0]["title"] != "First" || section.Items[1]["title"] != "Third" {
		t.Fatalf("unexpected survivors: %v", section.Items)
	}

	getResp := doJSON(t, router, http.MethodGet, base, nil)
	if getResp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", getResp.Code)
	}
	var fetched resumes.ResumeResponse
	if err := json.NewDecoder(getResp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode get response: %v", err)
	}
	if len(fetched.Sections[resumes.KindExperience]) != 2 {
		t.Fatalf("expected persisted delete, got %v", fetched.Sections[resumes.KindExperience])
	}
	if fetched.Revisions[resumes.KindExperience] != 2 {
		t.Fatalf("expected revision 2 after two writes, got %d", fetched.Revisions[resumes.KindExperience])
	}
}

func TestPutSectionRevisionConflictReturns409(t *testing.T) {
	router := newTestRouter("user-123")

	createResp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{"title": "t"})
	if createResp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", createResp.Code)
	}

	path := "/api/v1/resumes/1/sections/skills"
	first := doJSON(t, router, http.MethodPut, path, map[string]any{
		"items": []map[string]any{{"name": "Go"}},
	})
	if first.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", first.Code)
	}

	stale := doJSON(t, router, http.MethodPut, path, map[string]any{
		"items":    []map[string]any{{"name": "Rust"}},
		"revision": 0,
	})
	if stale.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d: %s", stale.Code, stale.Body.String())
	}

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.NewDecoder(stale.Body).Decode(&body); err != nil {
		t.Fatalf("decode conflict body: %v", err)
	}
	if body.Error.Code != "conflict" {
		t.Fatalf("expected conflict code, got %q", body.Error.Code)
	}
}

func TestPutSectionValidation(t *testing.T) {
	router := newTestRouter("user-123")

	createResp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{"title": "t"})
	if createResp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", createResp.Code)
	}

	unknownKind := doJSON(t, router, http.MethodPut, "/api/v1/resumes/1/sections/bogus", map[string]any{
		"items": []map[string]any{{"name": "x"}},
	})
	if unknownKind.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for unknown kind, got %d", unknownKind.Code)
	}

	tooManySingletons := doJSON(t, router, http.MethodPut, "/api/v1/resumes/1/sections/summary", map[string]any{
		"items": []map[string]any{{"text": "a"}, {"text": "b"}},
	})
	if tooManySingletons.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for multi-item singleton, got %d", tooManySingletons.Code)
	}

	missingResume := doJSON(t, router, http.MethodPut, "/api/v1/resumes/42/sections/skills", map[string]any{
		"items": []map[string]any{{"name": "Go"}},
	})
	if missingResume.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing resume, got %d", missingResume.Code)
	}
}

func TestDeleteResumeEndpoint(t *testing.T) {
	router := newTestRouter("user-123")

	if resp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{"title": "t"}); resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}

	if resp := doJSON(t, router, http.MethodDelete, "/api/v1/resumes/1", nil); resp.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.Code)
	}
	if resp := doJSON(t, router, http.MethodDelete, "/api/v1/resumes/1", nil); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on second delete, got %d", resp.Code)
	}

	// The freed id is not handed out again.
	createResp := doJSON(t, router, http.MethodPost, "/api/v1/resumes", map[string]any{"title": "next"})
	var created resumes.ResumeResponse
	if err := json.NewDecoder(createResp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	if created.ResumeID != 2 {
		t.Fatalf("expected resumeId 2, got %d", created.ResumeID)
	}
}
