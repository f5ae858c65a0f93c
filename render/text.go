package render

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/logger"
	"github.com/jsphweid/staffgrid/model"
	"go.uber.org/zap"
)

// Text prints the grid one bar per line. Highlighted entries are wrapped in
// a colour tag, e.g. "<red:C4-E4 q>".
type Text struct {
	mu  sync.Mutex
	w   io.Writer
	log *zap.Logger
}

// NewText renders to w. Write failures are logged to l, which may be nil.
func NewText(w io.Writer, l *zap.Logger) *Text {
	return &Text{w: w, log: logger.OrNop(l).Named("render")}
}

func (t *Text) Render(g *grid.Grid, highlights []model.Highlight) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.w, Format(g, highlights)); err != nil {
		t.log.Warn("could not render grid", zap.Error(err))
	}
}

// Format renders the grid the same way Text does.
func Format(g *grid.Grid, highlights []model.Highlight) string {
	colors := make(map[[2]int][]string)
	for _, h := range highlights {
		key := [2]int{h.Bar, h.Note}
		colors[key] = append(colors[key], string(h.Color))
	}

	var sb strings.Builder
	for b, bar := range g.Bars {
		fmt.Fprintf(&sb, "%3d |", b+1)
		for n, e := range bar {
			cell := Cell(e)
			if c, ok := colors[[2]int{b, n}]; ok {
				cell = "<" + strings.Join(c, ",") + ":" + cell + ">"
			}
			sb.WriteString(" " + cell)
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Cell is the short form of one entry: its pitches (or "rest") and code.
func Cell(e model.Entry) string {
	if e.IsPause {
		return "rest " + string(e.DurationCode)
	}
	names := make([]string, len(e.AllPitches))
	for i, p := range e.AllPitches {
		names[i] = p.String()
	}
	return strings.Join(names, "-") + " " + string(e.DurationCode)
}

// Func adapts a function to the session renderer.
type Func func(g *grid.Grid, highlights []model.Highlight)

func (f Func) Render(g *grid.Grid, highlights []model.Highlight) {
	f(g, highlights)
}
