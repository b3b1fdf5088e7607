package printer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/reflow/ansi"
	"github.com/muesli/reflow/truncate"
)

const ellipsis = "…"

type textWriter struct {
	w     io.Writer
	width int
	err   error

	header, pos, kind, name, key, value *color.Color
}

func newTextWriter(w io.Writer, opts Options) *textWriter {
	tw := &textWriter{
		w:      w,
		width:  opts.Width,
		header: color.New(color.Bold),
		pos:    color.New(color.Faint),
		kind:   color.New(color.FgYellow),
		name:   color.New(color.FgCyan, color.Bold),
		key:    color.New(color.FgGreen),
		value:  color.New(color.FgMagenta),
	}

	for _, c := range []*color.Color{tw.header, tw.pos, tw.kind, tw.name, tw.key, tw.value} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	return tw
}

func (w *textWriter) printf(format string, a ...any) {
	if w.err != nil {
		return
	}

	_, w.err = fmt.Fprintf(w.w, format, a...)
}

func (w *textWriter) WriteHeader(name string, count int) {
	w.printf("%s\n", w.header.Sprintf("%s: %d tokens", name, count))
}

func (w *textWriter) WriteRecord(rec *Record) {
	pos := w.pos.Sprintf("%-9s", fmt.Sprintf("%d:%d", rec.Line, rec.Column))
	kind := w.kind.Sprintf("%-9s", rec.Kind)

	if rec.Kind == KindText {
		w.printf("%s %s %s\n", pos, kind, w.fit(strconv.Quote(rec.Text)))
		return
	}

	var b strings.Builder
	b.WriteString(w.name.Sprint(rec.Name))

	for _, p := range rec.Pairs {
		b.WriteByte(' ')
		b.WriteString(w.key.Sprint(p.Key))

		if p.Value != nil {
			b.WriteByte('=')
			b.WriteString(w.value.Sprint(w.fit(strconv.Quote(*p.Value))))
		}
	}

	w.printf("%s %s %s\n", pos, kind, b.String())
}

// fit truncates s to the configured width, 0 meaning no limit.
func (w *textWriter) fit(s string) string {
	if w.width <= 0 || ansi.PrintableRuneWidth(s) <= w.width {
		return s
	}

	return truncate.StringWithTail(s, uint(w.width), ellipsis)
}
