package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"example.com/activityboard/internal/apiclient"
	"example.com/activityboard/internal/board"
	"example.com/activityboard/internal/config"
	"example.com/activityboard/internal/view"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, config.Load(), os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: activityctl [-server URL] <command> [flags]")
	fmt.Fprintln(w, "commands:")
	fmt.Fprintln(w, "  list                              show activities and participants")
	fmt.Fprintln(w, "  signup -email E -activity A       sign E up for A")
	fmt.Fprintln(w, "  unregister -activity A -email E   remove E from A (asks for confirmation)")
}

func run(ctx context.Context, cfg config.Config, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	global := flag.NewFlagSet("activityctl", flag.ContinueOnError)
	global.SetOutput(stderr)
	server := global.String("server", cfg.APIBaseURL, "activities API base URL")
	verbose := global.Bool("v", false, "log API calls to stderr")
	if err := global.Parse(args); err != nil {
		return 2
	}
	if global.NArg() == 0 {
		usage(stderr)
		return 2
	}

	level := slog.LevelWarn
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))

	dialog := &terminalDialog{in: bufio.NewReader(stdin), out: stdout, errOut: stderr}
	client := apiclient.New(*server, cfg.APITimeout, apiclient.WithLogger(logger))
	b := board.New(view.NewDocument(cfg.Title), client,
		board.WithLogger(logger),
		board.WithDefaultDialog(dialog),
		board.WithAfterFunc(func(_ time.Duration, _ func()) {}),
	)

	cmd, rest := global.Arg(0), global.Args()[1:]
	switch cmd {
	case "list":
		return list(ctx, b, stdout)
	case "signup":
		return signup(ctx, b, rest, stdout, stderr)
	case "unregister":
		return unregister(ctx, b, dialog, rest, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		usage(stderr)
		return 2
	}
}

func list(ctx context.Context, b *board.Board, stdout io.Writer) int {
	err := b.Refresh(ctx)
	printList(b, stdout)
	if err != nil {
		return 1
	}
	return 0
}

func printList(b *board.Board, stdout io.Writer) {
	for _, card := range view.ByClass(b.Document().Region(view.ListID), view.CardClass) {
		fmt.Fprintln(stdout, view.PlainText(card))
		fmt.Fprintln(stdout)
	}
	if loadFailed(b) {
		fmt.Fprintln(stdout, view.LoadFailureNotice)
		return
	}
	var names []string
	for _, opt := range view.ByTag(b.Document().Region(view.SelectID), "option") {
		if v := view.Attr(opt, "value"); v != "" {
			names = append(names, v)
		}
	}
	fmt.Fprintf(stdout, "Activities: %s\n", strings.Join(names, ", "))
}

func loadFailed(b *board.Board) bool {
	return strings.TrimSpace(view.TextContent(b.Document().Region(view.ListID))) == view.LoadFailureNotice
}

func signup(ctx context.Context, b *board.Board, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	fs.SetOutput(stderr)
	email := fs.String("email", "", "student email")
	activity := fs.String("activity", "", "activity name")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	err := b.SubmitSignup(ctx, *email, *activity)
	status := b.Document().Status()
	if err != nil {
		fmt.Fprintln(stderr, status.Text)
		return 1
	}
	fmt.Fprintln(stdout, status.Text)
	return 0
}

func unregister(ctx context.Context, b *board.Board, dialog *terminalDialog, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("unregister", flag.ContinueOnError)
	fs.SetOutput(stderr)
	activity := fs.String("activity", "", "activity name")
	email := fs.String("email", "", "participant email")
	yes := fs.Bool("yes", false, "skip the confirmation prompt")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	dialog.assumeYes = *yes

	if err := b.Start(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if loadFailed(b) {
		fmt.Fprintln(stderr, view.LoadFailureNotice)
		return 1
	}
	if !b.Document().Click(ctx, view.UnregisterID(*activity, *email)) {
		fmt.Fprintf(stderr, "%s is not signed up for %s\n", *email, *activity)
		return 1
	}

	switch {
	case dialog.alerted:
		return 1
	case !dialog.confirmed:
		fmt.Fprintln(stdout, "Cancelled.")
		return 0
	}
	fmt.Fprintf(stdout, "Unregistered %s from %s\n", *email, *activity)
	return 0
}

// terminalDialog prompts on stdout and reads y/N answers from stdin. Alerts go
// to stderr.
type terminalDialog struct {
	in        *bufio.Reader
	out       io.Writer
	errOut    io.Writer
	assumeYes bool

	confirmed bool
	alerted   bool
}

func (d *terminalDialog) Confirm(_ context.Context, message string) bool {
	if d.assumeYes {
		d.confirmed = true
		return true
	}
	fmt.Fprintf(d.out, "%s [y/N]: ", message)
	line, err := d.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false
	}
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		d.confirmed = true
	}
	return d.confirmed
}

func (d *terminalDialog) Alert(_ context.Context, message string) {
	d.alerted = true
	fmt.Fprintln(d.errOut, message)
}
