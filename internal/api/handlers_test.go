package api

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/csrf"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"example.com/activityboard/internal/apiclient"
	"example.com/activityboard/internal/board"
	"example.com/activityboard/internal/domain"
	"example.com/activityboard/internal/testsupport"
	"example.com/activityboard/internal/view"
)

type fixture struct {
	api      *testsupport.ActivitiesAPI
	sessions *Sessions
	router   *mux.Router
	cookies  []*http.Cookie
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	api := testsupport.StartActivitiesAPI(t, testsupport.ChessClub())
	client := apiclient.New(api.URL(), 0)

	sessions := NewSessions(func() *board.Board {
		return board.New(view.NewDocument("Activities"), client,
			board.WithLogger(logger),
			board.WithAfterFunc(func(time.Duration, func()) {}),
		)
	})

	router := mux.NewRouter()
	NewHandler(sessions, logger).RegisterRoutes(router)
	router.Use(RequestLogger(logger))
	return &fixture{api: api, sessions: sessions, router: router}
}

// otherBrowser shares the server but carries no session cookie.
func (f *fixture) otherBrowser() *fixture {
	return &fixture{api: f.api, sessions: f.sessions, router: f.router}
}

func (f *fixture) serve(req *http.Request) *httptest.ResponseRecorder {
	for _, c := range f.cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	if cookies := rr.Result().Cookies(); len(cookies) > 0 {
		f.cookies = cookies
	}
	return rr
}

func (f *fixture) post(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.serve(req)
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) state(t *testing.T) StateView {
	t.Helper()
	rr := f.get("/state")
	require.Equal(t, http.StatusOK, rr.Code)
	var state StateView
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &state))
	return state
}

func cardNames(page *html.Node) []string {
	var names []string
	for _, card := range view.ByClass(page, view.CardClass) {
		names = append(names, view.TextContent(view.ByTag(card, "h4")[0]))
	}
	return names
}

func parse(t *testing.T, body string) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(body))
	require.NoError(t, err)
	return doc
}

func TestPageRendersBoardWithDelegatedForm(t *testing.T) {
	f := newFixture(t)

	rr := f.get("/")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	require.NotEmpty(t, rr.Header().Get("X-Request-ID"))

	page := parse(t, rr.Body.String())
	require.Len(t, view.ByClass(page, view.CardClass), 1)
	require.NotNil(t, view.ByID(page, unregisterFormID))

	btn := view.ByClass(page, view.UnregisterClass)[0]
	require.Equal(t, "submit", view.Attr(btn, "type"))
	require.Equal(t, unregisterFormID, view.Attr(btn, "form"))
	require.Equal(t, view.UnregisterID("Chess Club", "a@x.com"), view.Attr(btn, "value"))
	require.Empty(t, view.FindAll(page, func(n *html.Node) bool { return view.Attr(n, "name") == CSRFField }))
}

func TestSignupPostRedirectsAndUpdatesStatus(t *testing.T) {
	f := newFixture(t)

	rr := f.post("/signup", url.Values{"email": {"new@x.com"}, "activity": {"Chess Club"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, "/", rr.Header().Get("Location"))

	status := f.state(t).Status
	require.Equal(t, "Signed up new@x.com for Chess Club", status.Text)
	require.Equal(t, board.StyleSuccess, status.Class)

	page := parse(t, f.get("/").Body.String())
	require.Contains(t, view.TextContent(view.ByID(page, view.ListID)), "new@x.com")
}

func TestSignupRejectionKeepsForm(t *testing.T) {
	f := newFixture(t)

	f.post("/signup", url.Values{"email": {"a@x.com"}, "activity": {"Chess Club"}})

	state := f.state(t)
	require.Equal(t, "Student is already signed up", state.Status.Text)
	require.Equal(t, board.StyleError, state.Status.Class)
	require.True(t, state.Status.Visible)
	require.Equal(t, FormView{Email: "a@x.com", Activity: "Chess Club"}, state.Form)
}

func TestPageFetchesCatalogOnEveryLoad(t *testing.T) {
	f := newFixture(t)

	page := parse(t, f.get("/").Body.String())
	require.Equal(t, []string{"Chess Club"}, cardNames(page))
	require.Equal(t, 1, f.api.Count("list"))

	f.api.SetCatalog(domain.NewCatalog(domain.Activity{
		Name:    "Drama",
		Details: domain.ActivityDetails{Description: "Stage", Schedule: "Mon", MaxParticipants: 10, Participants: []string{}},
	}))

	page = parse(t, f.get("/").Body.String())
	require.Equal(t, []string{"Drama"}, cardNames(page))
	require.Equal(t, 2, f.api.Count("list"))
	require.Equal(t, 1, f.sessions.Len())
}

func TestPageRecoversAfterFailedLoad(t *testing.T) {
	f := newFixture(t)
	f.api.Script("list", http.StatusServiceUnavailable, `{"detail":"down"}`)

	page := parse(t, f.get("/").Body.String())
	require.Equal(t, view.LoadFailureNotice, strings.TrimSpace(view.TextContent(view.ByID(page, view.ListID))))
	require.Empty(t, cardNames(page))

	page = parse(t, f.get("/").Body.String())
	require.Equal(t, []string{"Chess Club"}, cardNames(page))
	require.Len(t, view.ByTag(view.ByID(page, view.SelectID), "option"), 2)
}

func TestSignupStateStaysWithItsBrowser(t *testing.T) {
	f := newFixture(t)
	f.post("/signup", url.Values{"email": {"a@x.com"}, "activity": {"Chess Club"}})
	require.Equal(t, "a@x.com", f.state(t).Form.Email)

	other := f.otherBrowser()
	page := parse(t, other.get("/").Body.String())
	require.Empty(t, view.Attr(view.ByID(page, view.EmailID), "value"))
	message := view.ByID(page, view.MessageID)
	require.True(t, view.HasClass(message, view.HiddenClass))
	require.Empty(t, view.TextContent(message))

	state := other.state(t)
	require.Equal(t, FormView{}, state.Form)
	require.False(t, state.Status.Visible)
	require.Equal(t, 2, f.sessions.Len())
	require.NotEqual(t, f.cookies[0].Value, other.cookies[0].Value)
}

func TestClickWithoutAnswerAsksForConfirmation(t *testing.T) {
	f := newFixture(t)
	target := view.UnregisterID("Chess Club", "a@x.com")

	rr := f.post("/click", url.Values{"target": {target}})
	require.Equal(t, http.StatusOK, rr.Code)

	page := parse(t, rr.Body.String())
	question := view.ByClass(page, "confirm-question")
	require.Len(t, question, 1)
	require.Equal(t, "Unregister a@x.com from Chess Club?", view.TextContent(question[0]))

	hidden := view.FindAll(page, func(n *html.Node) bool { return view.Attr(n, "name") == "target" })
	require.Len(t, hidden, 1)
	require.Equal(t, target, view.Attr(hidden[0], "value"))
	require.Zero(t, f.api.Count("unregister"))
}

func TestClickConfirmedUnregisters(t *testing.T) {
	f := newFixture(t)

	rr := f.post("/click", url.Values{"target": {view.UnregisterID("Chess Club", "a@x.com")}, "confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Equal(t, 1, f.api.Count("unregister"))

	page := parse(t, f.get("/").Body.String())
	require.Empty(t, view.ByClass(page, view.UnregisterClass))
}

func TestClickDeclinedDoesNothing(t *testing.T) {
	f := newFixture(t)

	rr := f.post("/click", url.Values{"target": {view.UnregisterID("Chess Club", "a@x.com")}, "confirm": {"no"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Zero(t, f.api.Count("unregister"))
}

func TestClickRejectionRendersAlert(t *testing.T) {
	f := newFixture(t)
	f.api.Script("unregister", http.StatusNotFound, `{"detail":"Not found"}`)

	rr := f.post("/click", url.Values{"target": {view.UnregisterID("Chess Club", "a@x.com")}, "confirm": {"yes"}})
	require.Equal(t, http.StatusOK, rr.Code)

	page := parse(t, rr.Body.String())
	alerts := view.ByClass(page, "alert")
	require.Len(t, alerts, 1)
	require.Equal(t, "Not found", view.TextContent(alerts[0]))
	require.Equal(t, 1, f.api.Count("list"))
}

func TestClickOnUnknownTargetIsIgnored(t *testing.T) {
	f := newFixture(t)

	rr := f.post("/click", url.Values{"target": {"unregister-missing"}, "confirm": {"yes"}})
	require.Equal(t, http.StatusSeeOther, rr.Code)
	require.Zero(t, f.api.Count("unregister"))
}

func TestHealthz(t *testing.T) {
	f := newFixture(t)

	rr := f.get("/healthz")
	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "ok", rr.Body.String())
}

func TestCSRFTokenInjectedIntoForms(t *testing.T) {
	f := newFixture(t)
	protected := csrf.Protect([]byte("01234567890123456789012345678901"), csrf.FieldName(CSRFField), csrf.Secure(false))(f.router)

	rr := httptest.NewRecorder()
	protected.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	page := parse(t, rr.Body.String())
	forms := view.ByTag(page, "form")
	require.Len(t, forms, 2)
	for _, form := range forms {
		fields := view.FindAll(form, func(n *html.Node) bool { return view.Attr(n, "name") == CSRFField })
		require.Len(t, fields, 1)
		require.NotEmpty(t, view.Attr(fields[0], "value"))
	}

	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader("email=x%40x.com&activity=Chess+Club"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr = httptest.NewRecorder()
	protected.ServeHTTP(rr, req)
	require.Equal(t, http.StatusForbidden, rr.Code)
	require.Zero(t, f.api.Count("signup"))
}
