// Package testsupport provides an in-memory activities API for tests.
package testsupport

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"slices"
	"sync"
	"testing"

	"example.com/activityboard/internal/domain"
)

// Request records a call received by the fake API.
type Request struct {
	Method    string
	Op        string
	Activity  string
	Email     string
	RawURI    string
	RequestID string
}

type scripted struct {
	status int
	body   string
}

// ActivitiesAPI serves the activities contract from an in-memory catalog.
// Signup and unregister behave like the production backend unless a response
// has been scripted for the operation.
type ActivitiesAPI struct {
	mu       sync.Mutex
	catalog  domain.Catalog
	requests []Request
	scripts  map[string][]scripted
	server   *httptest.Server
}

// StartActivitiesAPI launches the fake on a local port. It is closed when the
// test finishes.
func StartActivitiesAPI(t testing.TB, catalog domain.Catalog) *ActivitiesAPI {
	t.Helper()

	api := &ActivitiesAPI{
		catalog: catalog,
		scripts: make(map[string][]scripted),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /activities", api.list)
	mux.HandleFunc("POST /activities/{activity}/signup", api.signup)
	mux.HandleFunc("POST /activities/{activity}/unregister", api.unregister)

	api.server = httptest.NewServer(mux)
	t.Cleanup(api.server.Close)
	return api
}

// URL is the base URL of the fake.
func (a *ActivitiesAPI) URL() string {
	return a.server.URL
}

// Catalog returns a copy of the current server-side catalog.
func (a *ActivitiesAPI) Catalog() domain.Catalog {
	a.mu.Lock()
	defer a.mu.Unlock()
	return domain.NewCatalog(a.catalog.Activities()...)
}

// SetCatalog replaces the server-side catalog.
func (a *ActivitiesAPI) SetCatalog(catalog domain.Catalog) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.catalog = catalog
}

// Requests returns the calls received so far.
func (a *ActivitiesAPI) Requests() []Request {
	a.mu.Lock()
	defer a.mu.Unlock()
	return slices.Clone(a.requests)
}

// Count returns how many calls were received for op ("list", "signup" or
// "unregister").
func (a *ActivitiesAPI) Count(op string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := 0
	for _, r := range a.requests {
		if r.Op == op {
			n++
		}
	}
	return n
}

// Script queues a raw response for the next call of op.
func (a *ActivitiesAPI) Script(op string, status int, body string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.scripts[op] = append(a.scripts[op], scripted{status: status, body: body})
}

func (a *ActivitiesAPI) record(r *http.Request, op string) (scripted, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.requests = append(a.requests, Request{
		Method:    r.Method,
		Op:        op,
		Activity:  r.PathValue("activity"),
		Email:     r.URL.Query().Get("email"),
		RawURI:    r.RequestURI,
		RequestID: r.Header.Get("X-Request-ID"),
	})
	queue := a.scripts[op]
	if len(queue) == 0 {
		return scripted{}, false
	}
	a.scripts[op] = queue[1:]
	return queue[0], true
}

func (a *ActivitiesAPI) list(w http.ResponseWriter, r *http.Request) {
	if s, ok := a.record(r, "list"); ok {
		writeRaw(w, s)
		return
	}
	writeJSON(w, http.StatusOK, a.Catalog())
}

func (a *ActivitiesAPI) signup(w http.ResponseWriter, r *http.Request) {
	if s, ok := a.record(r, "signup"); ok {
		writeRaw(w, s)
		return
	}
	name := r.PathValue("activity")
	email := r.URL.Query().Get("email")

	a.mu.Lock()
	defer a.mu.Unlock()
	details, ok := a.catalog.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Activity not found"})
		return
	}
	if slices.Contains(details.Participants, email) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Student is already signed up"})
		return
	}
	details.Participants = append(slices.Clone(details.Participants), email)
	a.catalog.Set(name, details)
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Signed up %s for %s", email, name)})
}

func (a *ActivitiesAPI) unregister(w http.ResponseWriter, r *http.Request) {
	if s, ok := a.record(r, "unregister"); ok {
		writeRaw(w, s)
		return
	}
	name := r.PathValue("activity")
	email := r.URL.Query().Get("email")

	a.mu.Lock()
	defer a.mu.Unlock()
	details, ok := a.catalog.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Activity not found"})
		return
	}
	i := slices.Index(details.Participants, email)
	if i < 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Student is not signed up for this activity"})
		return
	}
	details.Participants = slices.Delete(slices.Clone(details.Participants), i, i+1)
	a.catalog.Set(name, details)
	writeJSON(w, http.StatusOK, map[string]string{"message": fmt.Sprintf("Unregistered %s from %s", email, name)})
}

func writeRaw(w http.ResponseWriter, s scripted) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(s.status)
	_, _ = w.Write([]byte(s.body))
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// ChessClub is a one-activity catalog used across tests.
func ChessClub() domain.Catalog {
	return domain.NewCatalog(domain.Activity{
		Name: "Chess Club",
		Details: domain.ActivityDetails{
			Description:     "Play chess",
			Schedule:        "Fri 3pm",
			MaxParticipants: 5,
			Participants:    []string{"a@x.com"},
		},
	})
}
