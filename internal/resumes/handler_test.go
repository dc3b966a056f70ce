package resumes

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(func(c *gin.Context) {
		if id := c.GetHeader("X-Test-User"); id != "" {
			c.Set("userId", id)
		}
		c.Next()
	})
	NewHandler(NewService(NewMemoryRepo())).RegisterRoutes(router.Group("/api/v1"))
	return router
}

func send(router *gin.Engine, method, path, user, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Test-User", user)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestHandlerLifecycle(t *testing.T) {
	router := newTestRouter()

	resp := send(router, http.MethodPost, "/api/v1/resumes", "u1", `{"name":"Alice","job_role":"Engineer"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", resp.Code, resp.Body.String())
	}
	var created struct {
		ID       string `json:"id"`
		ResumeID string `json:"resume_id"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &created); err != nil || created.ResumeID == "" || created.ID == "" {
		t.Fatalf("unexpected create body %s", resp.Body.String())
	}

	resp = send(router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, "u1", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"name":"Alice"`) {
		t.Fatalf("get: %d %s", resp.Code, resp.Body.String())
	}

	if resp = send(router, http.MethodGet, "/api/v1/resumes/"+created.ResumeID, "u2", ""); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d", resp.Code)
	}
	if resp = send(router, http.MethodPatch, "/api/v1/resumes/"+created.ResumeID, "u2", `{"name":"x"}`); resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404 patching other user's resume, got %d", resp.Code)
	}
	if resp = send(router, http.MethodPatch, "/api/v1/resumes/"+created.ResumeID, "u1", `{"name":"Alicia"}`); resp.Code != http.StatusOK {
		t.Fatalf("patch: %d %s", resp.Code, resp.Body.String())
	}

	resp = send(router, http.MethodGet, "/api/v1/resumes?role=ENG", "u1", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("list: %d", resp.Code)
	}
	var listed struct {
		Resumes []map[string]any `json:"resumes"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &listed); err != nil || len(listed.Resumes) != 1 || listed.Resumes[0]["name"] != "Alicia" {
		t.Fatalf("unexpected list %s", resp.Body.String())
	}

	if resp = send(router, http.MethodDelete, "/api/v1/resumes/"+created.ResumeID, "u1", ""); resp.Code != http.StatusOK {
		t.Fatalf("delete: %d", resp.Code)
	}
	resp = send(router, http.MethodDelete, "/api/v1/resumes/"+created.ResumeID, "u1", "")
	if resp.Code != http.StatusOK || !strings.Contains(resp.Body.String(), `"deleted":0`) {
		t.Fatalf("second delete: %d %s", resp.Code, resp.Body.String())
	}
}

func TestHandlerRejectsNonObjectBody(t *testing.T) {
	router := newTestRouter()
	for _, body := range []string{`[1,2]`, `"text"`, `null`, `{`} {
		resp := send(router, http.MethodPost, "/api/v1/resumes", "u1", body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("body %s: expected 400, got %d", body, resp.Code)
		}
	}
}

func TestHandlerRejectsBadDate(t *testing.T) {
	router := newTestRouter()
	resp := send(router, http.MethodGet, "/api/v1/resumes?date=yesterday", "u1", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
}
