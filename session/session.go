package session

import (
	"sync"

	"github.com/jsphweid/staffgrid/clock"
	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/cursor"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/match"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/playback"
	"github.com/jsphweid/staffgrid/selection"
	"go.uber.org/zap"
)

// Provider supplies the two note streams and tells the session when they
// change.
type Provider interface {
	Bars() (treble, bass []model.Bar)
	Subscribe(func())
}

// Renderer draws the grid with the current highlights.
type Renderer interface {
	Render(g *grid.Grid, highlights []model.Highlight)
}

// Session owns the grid and both cursors. All methods, and the playback
// timer callbacks, run under one lock, so the grid and the cursors are only
// ever touched by one caller at a time.
type Session struct {
	mu        sync.Mutex
	opts      options
	log       *zap.Logger
	provider  Provider
	store     *grid.Store
	playPos   cursor.Position
	selPos    cursor.Position
	// sounding is the entry the scheduler dispatched last.
	sounding  cursor.Position
	scheduler *playback.Scheduler
	selection *selection.Cursor
}

func New(p Provider, opts ...Option) *Session {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	s := &Session{
		opts:     o,
		log:      o.logger.Named("session"),
		provider: p,
		store:    grid.NewStore(),
	}

	cfg := playback.Config{
		Clock:     o.clock,
		Tempo:     o.tempo,
		Sink:      o.sink,
		Velocity:  o.velocity,
		Epsilon:   constants.RearmEpsilon,
		Tolerance: constants.AlignTolerance,
		Logger:    o.logger,
		Exec:      s.locked,
		OnAdvance: func(played, next cursor.Position) {
			s.sounding = played
			s.render()
		},
		OnArrest: func(error) {
			s.render()
		},
	}
	if o.align {
		cfg.Aligner = clock.NewTransport(o.clock, o.tempo.BPM, constants.AlignTolerance)
	}
	s.scheduler = playback.New(s.store, &s.playPos, cfg)
	s.selection = selection.New(s.store, &s.selPos, o.logger, func(cursor.Position) {
		s.render()
	})
	s.selection.SetMode(o.mode)

	s.RebuildGrid()
	p.Subscribe(s.RebuildGrid)
	return s
}

func (s *Session) locked(f func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f()
}

// RebuildGrid rebuilds every bar from the provider and clamps both cursors
// into the new grid.
func (s *Session) RebuildGrid() {
	s.mu.Lock()
	defer s.mu.Unlock()

	treble, bass := s.provider.Bars()
	g := s.store.Rebuild(treble, bass)
	if s.playPos.Clamp(g) {
		s.log.Debug("playback position clamped after rebuild")
	}
	if s.selPos.Clamp(g) {
		s.log.Debug("selection position clamped after rebuild")
	}
	s.log.Info("grid rebuilt", zap.Int("bars", g.NumBars()))
	s.render()
}

func (s *Session) Grid() *grid.Grid {
	return s.store.Snapshot()
}

func (s *Session) GridEntry(bar, note int) (model.Entry, bool) {
	return s.store.Entry(bar, note)
}

func (s *Session) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.Start()
}

func (s *Session) Stop() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	stopped := s.scheduler.Stop()
	if stopped {
		s.render()
	}
	return stopped
}

func (s *Session) State() playback.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scheduler.State()
}

// SeekPlayback moves the playback cursor; out of range lands on the first
// entry.
func (s *Session) SeekPlayback(bar, note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.playPos = cursor.Position{Bar: bar, Note: note}
	s.playPos.Clamp(s.store.Snapshot())
	s.render()
}

func (s *Session) SetSelectionPosition(bar, note int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Set(bar, note)
}

func (s *Session) AdvanceSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.Advance()
}

func (s *Session) RetreatSelection() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Retreat()
}

// MatchInput is called with the full held set on every input change.
func (s *Session) MatchInput(held []pitch.Pitch) bool {
	return s.Match(held).Matched
}

// MatchResult is the outcome of one match together with the selection it
// left behind.
type MatchResult struct {
	Matched   bool
	Selection cursor.Position
	// Target is what the selection waits for next; nil off the grid.
	Target []pitch.Pitch
}

// Match runs MatchInput and reads the resulting selection and target under
// the same lock.
func (s *Session) Match(held []pitch.Pitch) MatchResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	res := MatchResult{Matched: s.selection.Match(held)}
	res.Selection = s.selection.Position()
	res.Target, _ = s.selection.Target()
	return res
}

// Target is the pitch set the selection cursor is waiting for.
func (s *Session) Target() []pitch.Pitch {
	s.mu.Lock()
	defer s.mu.Unlock()
	target, _ := s.selection.Target()
	return target
}

func (s *Session) SetMatchMode(m match.Mode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection.SetMode(m)
}

func (s *Session) MatchMode() match.Mode {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Mode()
}

func (s *Session) Positions() (play, sel cursor.Position) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playPos, s.selPos
}

func (s *Session) Highlights() []model.Highlight {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.highlights()
}

// highlights marks the sounding entry while playing, then the selection.
func (s *Session) highlights() []model.Highlight {
	var res []model.Highlight
	if s.scheduler.State() == playback.Running {
		res = append(res, model.Highlight{Bar: s.sounding.Bar, Note: s.sounding.Note, Color: s.opts.playbackColor})
	}
	res = append(res, model.Highlight{Bar: s.selPos.Bar, Note: s.selPos.Note, Color: s.opts.selectionColor})
	return res
}

func (s *Session) render() {
	if s.opts.renderer == nil {
		return
	}
	s.opts.renderer.Render(s.store.Snapshot(), s.highlights())
}
