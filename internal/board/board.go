// Package board keeps the activity document in sync with the activities API
// and handles the signup and unregister actions a user can take on it.
package board

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/net/html"

	"example.com/activityboard/internal/apiclient"
	"example.com/activityboard/internal/domain"
	"example.com/activityboard/internal/observability"
	"example.com/activityboard/internal/view"
)

// DefaultHideDelay is how long a signup status stays visible.
const DefaultHideDelay = 5 * time.Second

// Status region styles.
const (
	StyleSuccess = "success"
	StyleError   = "error"
)

const (
	msgSignupFallback     = "An error occurred"
	msgSignupFailed       = "Failed to sign up. Please try again."
	msgUnregisterFallback = "Failed to unregister participant"
	msgUnregisterFailed   = "Failed to unregister participant. Please try again."
)

// ErrDeclined is returned by RequestUnregister when the user does not confirm.
var ErrDeclined = errors.New("unregister declined")

// ActivitiesAPI is the subset of the activities API the board consumes.
type ActivitiesAPI interface {
	List(ctx context.Context) (domain.Catalog, error)
	Signup(ctx context.Context, activity, email string) (apiclient.Reply, error)
	Unregister(ctx context.Context, activity, email string) (apiclient.Reply, error)
}

// Option configures optional behaviour for the Board.
type Option func(*Board)

// WithLogger overrides the logger used to report failures.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithHideDelay overrides how long a signup status stays visible.
func WithHideDelay(d time.Duration) Option {
	return func(b *Board) {
		b.hideDelay = d
	}
}

// WithAfterFunc replaces the timer used to hide the status region.
func WithAfterFunc(afterFunc func(time.Duration, func())) Option {
	return func(b *Board) {
		b.afterFunc = afterFunc
	}
}

// WithDefaultDialog sets the dialog used when the context carries none.
func WithDefaultDialog(d Dialog) Option {
	return func(b *Board) {
		b.dialog = d
	}
}

// Board renders the activity catalog into a document and reacts to user
// actions. Handlers may overlap; nothing is de-duplicated or cancelled.
type Board struct {
	doc       *view.Document
	api       ActivitiesAPI
	dialog    Dialog
	logger    *slog.Logger
	hideDelay time.Duration
	afterFunc func(time.Duration, func())
	startOnce sync.Once
}

// New constructs a Board rendering into doc.
func New(doc *view.Document, api ActivitiesAPI, opts ...Option) *Board {
	b := &Board{
		doc:       doc,
		api:       api,
		dialog:    NoopDialog{},
		logger:    slog.Default(),
		hideDelay: DefaultHideDelay,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Document returns the document the board renders into.
func (b *Board) Document() *view.Document {
	return b.doc
}

// Start attaches the delegated click handler to the activities list and runs
// the initial refresh. Only the first call has any effect.
func (b *Board) Start(ctx context.Context) error {
	var err error
	b.startOnce.Do(func() {
		if err = b.doc.Listen(view.ListID, b.HandleClick); err != nil {
			return
		}
		_ = b.Refresh(ctx)
	})
	return err
}

// Refresh fetches the catalog and replaces the list and the selector options.
// On failure the list shows a notice and the selector is left as it was.
func (b *Board) Refresh(ctx context.Context) error {
	catalog, err := b.api.List(ctx)
	if err != nil {
		b.doc.ReplaceList(view.FailureNotice())
		b.logger.Error("error fetching activities", "error", err)
		recordAction(actionRefresh, outcomeOf(err))
		return fmt.Errorf("refresh activities: %w", err)
	}

	cards := make([]*html.Node, 0, catalog.Len())
	for _, activity := range catalog.Activities() {
		cards = append(cards, view.ActivityCard(activity))
	}
	b.doc.ShowCatalog(cards, view.ActivityOptions(catalog.Names()))

	recordAction(actionRefresh, outcomeOK)
	observability.RecordCatalogRendered(time.Now(), catalog.Len())
	return nil
}

// HandleClick is the delegated handler for clicks inside the activities list.
// Clicks that do not originate from an unregister action, or whose action
// lacks an activity or email, are ignored.
func (b *Board) HandleClick(ctx context.Context, ev view.Event) {
	btn := ev.Closest(view.UnregisterClass)
	if btn == nil {
		return
	}
	activity := view.Attr(btn, "data-activity")
	email := view.Attr(btn, "data-email")
	if activity == "" || email == "" {
		return
	}
	_ = b.RequestUnregister(ctx, activity, email)
}

// RequestUnregister asks for confirmation and removes email from activity.
// A successful removal refreshes the board; failures are alerted.
func (b *Board) RequestUnregister(ctx context.Context, activity, email string) error {
	dialog := b.dialogFor(ctx)
	if !dialog.Confirm(ctx, fmt.Sprintf("Unregister %s from %s?", email, activity)) {
		recordAction(actionUnregister, outcomeDeclined)
		return ErrDeclined
	}

	reply, err := b.api.Unregister(ctx, activity, email)
	var rejection *apiclient.RejectionError
	switch {
	case err == nil:
		recordAction(actionUnregister, outcomeOK)
		b.logger.Info("participant unregistered", "activity", activity, "email", email, "message", reply.Message)
		_ = b.Refresh(ctx)
		return nil
	case errors.As(err, &rejection):
		recordAction(actionUnregister, outcomeRejected)
		dialog.Alert(ctx, firstNonEmpty(rejection.Reply.Detail, rejection.Reply.Message, msgUnregisterFallback))
	default:
		recordAction(actionUnregister, outcomeTransport)
		b.logger.Error("error unregistering participant", "activity", activity, "email", email, "error", err)
		dialog.Alert(ctx, msgUnregisterFailed)
	}
	return fmt.Errorf("unregister %s from %s: %w", email, activity, err)
}

// SubmitSignup registers email for activity and reports the outcome in the
// status region, which hides itself after the hide delay. Earlier timers are
// not cancelled, so they may hide a newer message.
func (b *Board) SubmitSignup(ctx context.Context, email, activity string) error {
	reply, err := b.api.Signup(ctx, activity, email)
	var rejection *apiclient.RejectionError
	switch {
	case err == nil:
		recordAction(actionSignup, outcomeOK)
		b.doc.ShowStatus(reply.Message, StyleSuccess)
		b.doc.ResetForm()
		b.scheduleHide()
		_ = b.Refresh(ctx)
		return nil
	case errors.As(err, &rejection):
		recordAction(actionSignup, outcomeRejected)
		b.doc.ShowStatus(firstNonEmpty(rejection.Reply.Detail, msgSignupFallback), StyleError)
	default:
		recordAction(actionSignup, outcomeTransport)
		b.doc.ShowStatus(msgSignupFailed, StyleError)
		b.logger.Error("error signing up", "activity", activity, "email", email, "error", err)
	}
	b.scheduleHide()
	return fmt.Errorf("signup %s for %s: %w", email, activity, err)
}

func (b *Board) scheduleHide() {
	b.afterFunc(b.hideDelay, b.doc.HideStatus)
}

func (b *Board) dialogFor(ctx context.Context) Dialog {
	if d, ok := DialogFromContext(ctx); ok {
		return d
	}
	return b.dialog
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
