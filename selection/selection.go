package selection

import (
	"github.com/jsphweid/staffgrid/cursor"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/logger"
	"github.com/jsphweid/staffgrid/match"
	"github.com/jsphweid/staffgrid/pitch"
	"go.uber.org/zap"
)

type GridSource interface {
	Snapshot() *grid.Grid
}

// Cursor is the "play this next" position. It moves only when told to or
// when held input matches the entry under it.
type Cursor struct {
	grid     GridSource
	pos      *cursor.Position
	mode     match.Mode
	log      *zap.Logger
	onChange func(cursor.Position)
}

func New(g GridSource, pos *cursor.Position, log *zap.Logger, onChange func(cursor.Position)) *Cursor {
	return &Cursor{
		grid:     g,
		pos:      pos,
		log:      logger.OrNop(log).Named("selection"),
		onChange: onChange,
	}
}

func (c *Cursor) Position() cursor.Position {
	return *c.pos
}

func (c *Cursor) Mode() match.Mode {
	return c.mode
}

func (c *Cursor) SetMode(m match.Mode) {
	c.mode = m
}

func (c *Cursor) changed() {
	if c.onChange != nil {
		c.onChange(*c.pos)
	}
}

// Set moves the cursor; a position outside the grid lands on the first entry.
func (c *Cursor) Set(bar, note int) {
	*c.pos = cursor.Position{Bar: bar, Note: note}
	if c.pos.Clamp(c.grid.Snapshot()) {
		c.log.Debug("selection clamped", zap.Int("bar", bar), zap.Int("note", note))
	}
	c.changed()
}

func (c *Cursor) Advance() {
	c.pos.Advance(c.grid.Snapshot())
	c.changed()
}

// Retreat reports false at the start of the piece, where it does not wrap.
func (c *Cursor) Retreat() bool {
	if !c.pos.Retreat(c.grid.Snapshot()) {
		return false
	}
	c.changed()
	return true
}

// Target is the merged pitch set under the cursor. ok is false when the
// cursor is off the grid. A pause has an empty target.
func (c *Cursor) Target() (target []pitch.Pitch, ok bool) {
	entry, ok := c.grid.Snapshot().Entry(c.pos.Bar, c.pos.Note)
	if !ok {
		return nil, false
	}
	return entry.AllPitches, true
}

// Match compares the held pitches to the target and advances on a match.
// It is meant to be called on every change of the held set; a miss changes
// nothing. A pause is matched by releasing every key.
func (c *Cursor) Match(held []pitch.Pitch) bool {
	target, ok := c.Target()
	if !ok || !match.Sets(held, target, c.mode) {
		return false
	}
	c.log.Debug("input matched",
		zap.Stringer("position", *c.pos),
		zap.String("target", match.Key(target, c.mode)),
		zap.Stringer("mode", c.mode))
	c.Advance()
	return true
}
