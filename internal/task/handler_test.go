package task

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/redmonkez12/taskboard-api/internal/auth"
	"github.com/redmonkez12/taskboard-api/internal/logging"
)

// newTestRouter mounts the handler the way the real router does, with a
// middleware that plants the given owner into the request context in
// place of token verification.
func newTestRouter(store Store, owner uuid.UUID) http.Handler {
	handler := NewHandler(NewService(store), logging.NewLogger(true))

	r := chi.NewRouter()
	r.Route("/tasks", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), auth.UserIDContextKey, owner)
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Get("/", handler.List)
		r.Post("/", handler.Create)
		r.Put("/{id}", handler.Update)
		r.Delete("/{id}", handler.Delete)
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestHandlerCreate(t *testing.T) {
	owner := uuid.New()
	var gotInput CreateInput
	var gotOwner uuid.UUID
	store := &stubStore{
		createFn: func(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Task, error) {
			gotOwner = ownerID
			gotInput = in
			return &Task{ID: uuid.New(), Title: in.Title, Priority: in.Priority, Status: in.Status}, nil
		},
	}
	router := newTestRouter(store, owner)

	rec := doJSON(t, router, http.MethodPost, "/tasks/",
		`{"title":"write tests","dueDate":"2025-03-20"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201; body %s", rec.Code, rec.Body)
	}
	if gotOwner != owner {
		t.Errorf("owner = %s, want %s", gotOwner, owner)
	}
	if gotInput.Priority != PriorityLow || gotInput.Status != StatusPending {
		t.Errorf("defaults not applied: %s/%s", gotInput.Priority, gotInput.Status)
	}
	if gotInput.DueDate == nil || gotInput.DueDate.String() != "2025-03-20" {
		t.Errorf("DueDate = %v", gotInput.DueDate)
	}

	var created Task
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if created.Title != "write tests" {
		t.Errorf("Title = %q", created.Title)
	}
}

func TestHandlerCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing title", `{"description":"no title"}`},
		{"blank title", `{"title":"   "}`},
		{"bad priority", `{"title":"x","priority":"Urgent"}`},
		{"bad status", `{"title":"x","status":"Done"}`},
		{"bad due date", `{"title":"x","dueDate":"03/20/2025"}`},
		{"not json", `title=x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &stubStore{
				createFn: func(ctx context.Context, ownerID uuid.UUID, in CreateInput) (*Task, error) {
					t.Error("store reached despite invalid input")
					return &Task{}, nil
				},
			}
			router := newTestRouter(store, uuid.New())

			rec := doJSON(t, router, http.MethodPost, "/tasks/", tt.body)
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400; body %s", rec.Code, rec.Body)
			}
		})
	}
}

func TestHandlerUpdateDueDateTriState(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantSet  bool
		wantDate string // "" means nil
	}{
		{"explicit null clears", `{"dueDate":null}`, true, ""},
		{"absent leaves alone", `{"title":"renamed"}`, false, ""},
		{"value replaces", `{"dueDate":"2025-04-01"}`, true, "2025-04-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotPatch UpdatePatch
			store := &stubStore{
				updateFn: func(ctx context.Context, ownerID, taskID uuid.UUID, patch UpdatePatch) (*Task, error) {
					gotPatch = patch
					return &Task{}, nil
				},
			}
			router := newTestRouter(store, uuid.New())

			rec := doJSON(t, router, http.MethodPut, "/tasks/"+uuid.NewString(), tt.body)
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d; body %s", rec.Code, rec.Body)
			}

			if gotPatch.DueDateSet != tt.wantSet {
				t.Errorf("DueDateSet = %v, want %v", gotPatch.DueDateSet, tt.wantSet)
			}
			if tt.wantDate == "" {
				if gotPatch.DueDate != nil {
					t.Errorf("DueDate = %v, want nil", gotPatch.DueDate)
				}
			} else if gotPatch.DueDate == nil || gotPatch.DueDate.String() != tt.wantDate {
				t.Errorf("DueDate = %v, want %s", gotPatch.DueDate, tt.wantDate)
			}
		})
	}
}

func TestHandlerUpdateNotFound(t *testing.T) {
	store := &stubStore{
		updateFn: func(ctx context.Context, ownerID, taskID uuid.UUID, patch UpdatePatch) (*Task, error) {
			return nil, ErrNotFound
		},
	}
	router := newTestRouter(store, uuid.New())

	tests := []struct {
		name string
		path string
	}{
		{"unknown id", "/tasks/" + uuid.NewString()},
		{"malformed id", "/tasks/not-a-uuid"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodPut, tt.path, `{"title":"x"}`)
			if rec.Code != http.StatusNotFound {
				t.Fatalf("status = %d, want 404", rec.Code)
			}

			var body map[string]string
			if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
				t.Fatalf("response body: %v", err)
			}
			if body["code"] != "TASK_NOT_FOUND" {
				t.Errorf("code = %q, want TASK_NOT_FOUND", body["code"])
			}
		})
	}
}

func TestHandlerDelete(t *testing.T) {
	store := &stubStore{}
	router := newTestRouter(store, uuid.New())

	rec := doJSON(t, router, http.MethodDelete, "/tasks/"+uuid.NewString(), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var body MessageResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if body.Message != "Task deleted" {
		t.Errorf("message = %q, want %q", body.Message, "Task deleted")
	}
}

func TestHandlerDeleteNotFound(t *testing.T) {
	store := &stubStore{
		deleteFn: func(ctx context.Context, ownerID, taskID uuid.UUID) error {
			return ErrNotFound
		},
	}
	router := newTestRouter(store, uuid.New())

	for _, path := range []string{"/tasks/" + uuid.NewString(), "/tasks/garbage"} {
		rec := doJSON(t, router, http.MethodDelete, path, "")
		if rec.Code != http.StatusNotFound {
			t.Errorf("DELETE %s status = %d, want 404", path, rec.Code)
		}
	}
}

func TestHandlerList(t *testing.T) {
	owner := uuid.New()
	store := &stubStore{
		listFn: func(ctx context.Context, ownerID uuid.UUID) ([]Task, error) {
			if ownerID != owner {
				t.Errorf("store saw owner %s, want %s", ownerID, owner)
			}
			return []Task{{ID: uuid.New(), OwnerID: owner, Title: "only mine"}}, nil
		},
	}
	router := newTestRouter(store, owner)

	rec := doJSON(t, router, http.MethodGet, "/tasks/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var tasks []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &tasks); err != nil {
		t.Fatalf("response body: %v", err)
	}
	if len(tasks) != 1 || tasks[0]["title"] != "only mine" {
		t.Fatalf("body = %s", rec.Body)
	}
	for key := range tasks[0] {
		if strings.Contains(strings.ToLower(key), "owner") || strings.Contains(strings.ToLower(key), "user") {
			t.Errorf("response leaks owner via field %q", key)
		}
	}
}

func TestHandlerRequiresIdentity(t *testing.T) {
	// Mounted without the identity middleware, every route must refuse
	handler := NewHandler(NewService(&stubStore{}), logging.NewLogger(true))
	r := chi.NewRouter()
	r.Get("/tasks/", handler.List)
	r.Post("/tasks/", handler.Create)
	r.Put("/tasks/{id}", handler.Update)
	r.Delete("/tasks/{id}", handler.Delete)

	tests := []struct {
		method, path, body string
	}{
		{http.MethodGet, "/tasks/", ""},
		{http.MethodPost, "/tasks/", `{"title":"x"}`},
		{http.MethodPut, "/tasks/" + uuid.NewString(), `{"title":"x"}`},
		{http.MethodDelete, "/tasks/" + uuid.NewString(), ""},
	}
	for _, tt := range tests {
		rec := doJSON(t, r, tt.method, tt.path, tt.body)
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tt.method, tt.path, rec.Code)
		}
	}
}
