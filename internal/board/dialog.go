package board

import "context"

// Dialog is the blocking user interaction the board needs: a yes/no
// confirmation and an acknowledgement-only alert.
type Dialog interface {
	Confirm(ctx context.Context, message string) bool
	Alert(ctx context.Context, message string)
}

// NoopDialog declines every confirmation and drops alerts.
type NoopDialog struct{}

// Confirm always declines.
func (NoopDialog) Confirm(context.Context, string) bool { return false }

// Alert performs no action.
func (NoopDialog) Alert(context.Context, string) {}

type dialogKey struct{}

// WithDialog attaches the dialog for the user behind ctx.
func WithDialog(ctx context.Context, d Dialog) context.Context {
	return context.WithValue(ctx, dialogKey{}, d)
}

// DialogFromContext extracts a dialog attached with WithDialog.
func DialogFromContext(ctx context.Context) (Dialog, bool) {
	d, ok := ctx.Value(dialogKey{}).(Dialog)
	return d, ok
}
