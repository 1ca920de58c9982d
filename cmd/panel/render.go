package main

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/jaedolph/verified-first/internal/host"
	"github.com/jaedolph/verified-first/internal/leaderboard"
)

// terminalRenderer draws the panel surface onto a terminal.
type terminalRenderer struct {
	mu    sync.Mutex
	out   io.Writer
	title string
}

func newTerminalRenderer(out io.Writer) *terminalRenderer {
	return &terminalRenderer{out: out}
}

func (r *terminalRenderer) SetTitle(title string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.title = title
}

func (r *terminalRenderer) SetTheme(host.Theme) {
	// No styling on a terminal.
}

func (r *terminalRenderer) ShowRows(rows []leaderboard.Row, updatedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\n%s\n\n", r.title)
	for _, row := range rows {
		fmt.Fprintln(r.out, leaderboard.FormatRow(row))
	}
	fmt.Fprintf(r.out, "\nupdated %s\n", updatedAt.Format(time.RFC1123))
}

func (r *terminalRenderer) ShowEmpty(updatedAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\n%s\n\nNo first chatters yet.\n\nupdated %s\n", r.title, updatedAt.Format(time.RFC1123))
}

func (r *terminalRenderer) ShowNoData() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "\n%s\n\nNo firsts recorded for this channel.\n", r.title)
}

func (r *terminalRenderer) ShowNotConfigured() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "\nThis channel has not set up the extension yet.")
}

func (r *terminalRenderer) ShowError() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "\nCould not load the leaderboard, try again later.")
}
