// Package render draws controller state and notifications on a terminal.
package render

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"genstudio/internal/history"
	"genstudio/internal/lifecycle"
	"genstudio/internal/notify"
	"genstudio/internal/prefs"
	"genstudio/internal/request"
	"genstudio/types"
)

const promptWidth = 60

type palette struct {
	accent, muted, text, success, failure, warning, info lipgloss.Color
}

var palettes = map[string]palette{
	prefs.ThemeDark: {
		accent:  "#A78BFA",
		muted:   "#6B7280",
		text:    "#E5E7EB",
		success: "#34D399",
		failure: "#F87171",
		warning: "#FBBF24",
		info:    "#60A5FA",
	},
	prefs.ThemeLight: {
		accent:  "#6D28D9",
		muted:   "#4B5563",
		text:    "#111827",
		success: "#047857",
		failure: "#B91C1C",
		warning: "#B45309",
		info:    "#1D4ED8",
	},
}

type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	text    lipgloss.Style
	muted   lipgloss.Style
	box     lipgloss.Style
	failure lipgloss.Style
	notes   map[notify.Severity]lipgloss.Style
}

// Terminal implements lifecycle.Renderer and notify.Sink. Writes are
// serialised so background history refreshes never interleave with output.
type Terminal struct {
	mu      sync.Mutex
	out     io.Writer
	r       *lipgloss.Renderer
	theme   string
	st      styles
	visible map[uint64]notify.Notification
	now     func() time.Time
}

func NewTerminal(out io.Writer, theme string) *Terminal {
	t := &Terminal{
		out:     out,
		r:       lipgloss.NewRenderer(out),
		visible: map[uint64]notify.Notification{},
		now:     time.Now,
	}
	t.setTheme(theme)
	return t
}

func (t *Terminal) setTheme(theme string) {
	p, ok := palettes[theme]
	if !ok {
		theme, p = prefs.ThemeDark, palettes[prefs.ThemeDark]
	}
	t.theme = theme
	t.r.SetHasDarkBackground(theme == prefs.ThemeDark)

	ns := t.r.NewStyle()
	t.st = styles{
		title:   ns.Foreground(p.accent).Bold(true),
		label:   ns.Foreground(p.muted),
		text:    ns.Foreground(p.text),
		muted:   ns.Foreground(p.muted).Italic(true),
		box:     ns.Border(lipgloss.RoundedBorder()).BorderForeground(p.accent).Padding(0, 1),
		failure: ns.Foreground(p.failure).Bold(true),
		notes: map[notify.Severity]lipgloss.Style{
			notify.Success: ns.Foreground(p.success),
			notify.Error:   ns.Foreground(p.failure),
			notify.Warning: ns.Foreground(p.warning),
			notify.Info:    ns.Foreground(p.info),
		},
	}
}

// write renders under the lock so a theme switch never lands mid-line.
func (t *Terminal) write(render func(st styles) string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(t.out, render(t.st))
}

func (t *Terminal) Loading(mode request.Mode) {
	t.write(func(st styles) string {
		return st.muted.Render(fmt.Sprintf("Generating %s...", mode.Noun()))
	})
}

func (t *Terminal) Success(c lifecycle.Content) {
	t.write(func(st styles) string {
		rows := []string{st.title.Render(title(c)), st.field("url", c.URL)}
		if c.Type == request.ModeVideo && c.ThumbnailURL != "" {
			rows = append(rows, st.field("thumbnail", c.ThumbnailURL))
		}
		rows = append(rows, st.field("prompt", c.Prompt), st.field("options", options(c)))
		return st.box.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
	})
}

func options(c lifecycle.Content) string {
	opts := []string{c.Style, c.Resolution}
	if c.Type == request.ModeVideo {
		opts = append(opts, c.Duration)
		if c.FPS > 0 {
			opts = append(opts, fmt.Sprintf("%d fps", c.FPS))
		}
	} else {
		opts = append(opts, c.Format)
	}
	if c.FileSize > 0 {
		opts = append(opts, humanize.Bytes(uint64(c.FileSize)))
	}
	return joinNonEmpty(opts, " · ")
}

func (t *Terminal) Failure(message string) {
	t.write(func(st styles) string { return st.failure.Render("✗ " + message) })
}

func (t *Terminal) Preview(mode request.Mode) {
	t.write(func(st styles) string {
		return st.muted.Render(fmt.Sprintf("Preview cleared, now generating %ss", mode.Noun()))
	})
}

func (t *Terminal) History(mode request.Mode, items []types.HistoryItem) {
	noun := mode.Noun()
	now := t.now()
	t.write(func(st styles) string {
		if len(items) == 0 {
			return st.muted.Render(fmt.Sprintf("No %ss generated yet", noun))
		}
		var b strings.Builder
		b.WriteString(st.title.Render(fmt.Sprintf("%s history (%d)", capitalize(noun), len(items))))
		for _, it := range items {
			b.WriteString("\n")
			b.WriteString(st.label.Render(fmt.Sprintf("#%-5d %-12s %-10s ", it.ID, history.RelativeDate(it.CreatedAt.Time, now), it.Status)))
			b.WriteString(st.text.Render(truncate(it.Prompt, promptWidth)))
		}
		return b.String()
	})
}

func (t *Terminal) Theme(theme string) {
	t.mu.Lock()
	t.setTheme(theme)
	current := t.theme
	t.mu.Unlock()
	t.write(func(st styles) string { return st.label.Render("Theme: ") + st.title.Render(current) })
}

// currentTheme reports the palette in use.
func (t *Terminal) currentTheme() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.theme
}

func (t *Terminal) Show(n notify.Notification) {
	t.write(func(st styles) string {
		t.visible[n.ID] = n
		s, ok := st.notes[n.Severity]
		if !ok {
			s = st.text
		}
		return s.Render(fmt.Sprintf("[%s] %s", n.Severity, n.Message))
	})
}

func (t *Terminal) Dismiss(n notify.Notification) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.visible, n.ID)
}

// Visible lists the notifications shown and not yet dismissed.
func (t *Terminal) Visible() []notify.Notification {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]notify.Notification, 0, len(t.visible))
	for _, n := range t.visible {
		out = append(out, n)
	}
	return out
}

func (st styles) field(label, value string) string {
	return st.label.Render(fmt.Sprintf("%-9s ", label)) + st.text.Render(value)
}

func title(c lifecycle.Content) string {
	s := capitalize(c.Type.Noun())
	if c.ID > 0 {
		s += fmt.Sprintf(" #%d", c.ID)
	}
	return s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func joinNonEmpty(vals []string, sep string) string {
	out := vals[:0:0]
	for _, v := range vals {
		if v != "" {
			out = append(out, v)
		}
	}
	return strings.Join(out, sep)
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
