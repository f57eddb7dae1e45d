// Package api exposes the activity board to browsers.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"golang.org/x/net/html"

	"example.com/activityboard/internal/board"
	"example.com/activityboard/internal/view"
)

// CSRFField is the form field carrying the CSRF token.
const CSRFField = "csrf_token"

const unregisterFormID = "unregister-form"

// Handler coordinates HTTP requests with the requesting browser's board.
type Handler struct {
	sessions *Sessions
	logger   *slog.Logger
}

// NewHandler builds a Handler.
func NewHandler(sessions *Sessions, logger *slog.Logger) *Handler {
	return &Handler{sessions: sessions, logger: logger}
}

// RegisterRoutes wires endpoints to the router.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/", h.page).Methods(http.MethodGet)
	r.HandleFunc("/signup", h.signup).Methods(http.MethodPost)
	r.HandleFunc("/click", h.click).Methods(http.MethodPost)
	r.HandleFunc("/state", h.state).Methods(http.MethodGet)
	r.HandleFunc("/healthz", healthz).Methods(http.MethodGet)
}

// healthz reports a simple OK status for container health checks.
func healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// boardFor resolves the caller's board, writing an error response when none
// can be started.
func (h *Handler) boardFor(w http.ResponseWriter, r *http.Request) (*board.Board, bool, bool) {
	b, created, err := h.sessions.Board(w, r)
	if err != nil {
		h.logger.Error("resolve session board", "error", err)
		writeError(w, http.StatusInternalServerError, "internal_error", "unable to load the board")
		return nil, false, false
	}
	return b, created, true
}

// page fetches the catalog on every load. A new session has just been
// refreshed by its first Start.
func (h *Handler) page(w http.ResponseWriter, r *http.Request) {
	b, created, ok := h.boardFor(w, r)
	if !ok {
		return
	}
	if !created {
		_ = b.Refresh(r.Context())
	}
	h.renderPage(w, r, b, nil)
}

func (h *Handler) signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}
	b, _, ok := h.boardFor(w, r)
	if !ok {
		return
	}
	email := r.PostFormValue("email")
	activity := r.PostFormValue("activity")

	b.Document().SetForm(email, activity)
	_ = b.SubmitSignup(r.Context(), email, activity)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// click dispatches a click on the posted target element. Confirmation is a
// second round trip: without a confirm answer the dialog records the question
// and a confirmation page is returned instead.
func (h *Handler) click(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "unable to parse form")
		return
	}
	b, _, ok := h.boardFor(w, r)
	if !ok {
		return
	}
	target := r.PostFormValue("target")
	dialog := &pageDialog{answer: r.PostFormValue("confirm")}

	ctx := board.WithDialog(r.Context(), dialog)
	if !b.Document().Click(ctx, target) {
		h.logger.Debug("click on unknown element", "target", target)
	}

	question, alerts := dialog.outcome()
	switch {
	case question != "":
		h.renderConfirm(w, r, question, target)
	case len(alerts) > 0:
		h.renderPage(w, r, b, alerts)
	default:
		http.Redirect(w, r, "/", http.StatusSeeOther)
	}
}

// StateView is the JSON form of the document's interactive state.
type StateView struct {
	Status StatusView `json:"status"`
	Form   FormView   `json:"form"`
}

// StatusView mirrors the status region.
type StatusView struct {
	Text    string `json:"text"`
	Class   string `json:"class"`
	Visible bool   `json:"visible"`
}

// FormView mirrors the signup form fields.
type FormView struct {
	Email    string `json:"email"`
	Activity string `json:"activity"`
}

func (h *Handler) state(w http.ResponseWriter, r *http.Request) {
	b, _, ok := h.boardFor(w, r)
	if !ok {
		return
	}
	doc := b.Document()
	status := doc.Status()
	email, activity := doc.FormValues()
	writeJSON(w, http.StatusOK, StateView{
		Status: StatusView{Text: status.Text, Class: status.Class, Visible: status.Visible},
		Form:   FormView{Email: email, Activity: activity},
	})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, b *board.Board, alerts []string) {
	token := csrf.Token(r)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := b.Document().Render(w, func(root *html.Node) {
		body := view.ByTag(root, "body")[0]
		wireUnregisterActions(body, token)
		addCSRFFields(root, token)
		for i := len(alerts) - 1; i >= 0; i-- {
			body.InsertBefore(view.Element("div", view.Attrs("class", "alert", "role", "alert"), view.Text(alerts[i])), body.FirstChild)
		}
	})
	if err != nil {
		h.logger.Error("render page", "error", err)
	}
}

func (h *Handler) renderConfirm(w http.ResponseWriter, r *http.Request, question, target string) {
	page := confirmPage(question, target)
	addCSRFFields(page, csrf.Token(r))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := html.Render(w, page); err != nil {
		h.logger.Error("render confirm page", "error", err)
	}
}

// wireUnregisterActions turns every unregister button into a submit button of
// one shared form posting to /click.
func wireUnregisterActions(body *html.Node, token string) {
	body.AppendChild(view.Element("form", view.Attrs("id", unregisterFormID, "method", "post", "action", "/click")))
	for _, btn := range view.ByClass(body, view.UnregisterClass) {
		view.SetAttr(btn, "type", "submit")
		view.SetAttr(btn, "form", unregisterFormID)
		view.SetAttr(btn, "name", "target")
		view.SetAttr(btn, "value", view.Attr(btn, "id"))
	}
}

func addCSRFFields(root *html.Node, token string) {
	if token == "" {
		return
	}
	for _, form := range view.ByTag(root, "form") {
		form.AppendChild(view.Element("input", view.Attrs("type", "hidden", "name", CSRFField, "value", token)))
	}
}

func confirmPage(question, target string) *html.Node {
	root := &html.Node{Type: html.DocumentNode}
	root.AppendChild(&html.Node{Type: html.DoctypeNode, Data: "html"})
	root.AppendChild(view.Element("html", view.Attrs("lang", "en"),
		view.Element("head", nil,
			view.Element("meta", view.Attrs("charset", "utf-8")),
			view.Element("title", nil, view.Text("Confirm")),
		),
		view.Element("body", nil,
			view.Element("p", view.Attrs("class", "confirm-question"), view.Text(question)),
			view.Element("form", view.Attrs("method", "post", "action", "/click"),
				view.Element("input", view.Attrs("type", "hidden", "name", "target", "value", target)),
				view.Element("button", view.Attrs("type", "submit", "name", "confirm", "value", "yes"), view.Text("OK")),
				view.Element("button", view.Attrs("type", "submit", "name", "confirm", "value", "no"), view.Text("Cancel")),
			),
		),
	))
	return root
}

// pageDialog answers confirmations from the posted form and collects alerts
// for the response page.
type pageDialog struct {
	answer string

	mu       sync.Mutex
	question string
	alerts   []string
}

func (d *pageDialog) Confirm(_ context.Context, message string) bool {
	switch d.answer {
	case "yes":
		return true
	case "no":
		return false
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.question = message
	return false
}

func (d *pageDialog) Alert(_ context.Context, message string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.alerts = append(d.alerts, message)
}

func (d *pageDialog) outcome() (string, []string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.question, d.alerts
}

func writeError(w http.ResponseWriter, status int, code, detail string) {
	payload := map[string]string{
		"type":   code,
		"detail": detail,
	}
	writeJSON(w, status, payload)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
