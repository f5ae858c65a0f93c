package playback

import (
	"time"

	"github.com/jsphweid/staffgrid/clock"
	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/cursor"
	"github.com/jsphweid/staffgrid/duration"
	"github.com/jsphweid/staffgrid/grid"
	"github.com/jsphweid/staffgrid/logger"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	ErrInvalidTempo = errors.New("tempo must be a positive number")
	ErrEmptyGrid    = errors.New("grid is empty")
)

type State int

const (
	Stopped State = iota
	Running
)

func (s State) String() string {
	if s == Running {
		return "running"
	}
	return "stopped"
}

// Sink produces sound. at is the instant the notes should start; it may lie
// slightly in the future when onsets are phase aligned.
type Sink interface {
	Play(pitches []pitch.Pitch, velocity uint8, dur time.Duration, at time.Time) error
}

// Aligner snaps the dispatch time of an onset forward onto the beat grid of
// its duration category.
type Aligner interface {
	AlignToNextPhase(phase duration.Code) time.Time
}

type GridSource interface {
	Snapshot() *grid.Grid
}

type Config struct {
	Clock clock.Clock
	// Aligner is optional; without it every entry is dispatched at now.
	Aligner  Aligner
	Tempo    Tempo
	Sink     Sink
	Velocity uint8
	// Epsilon is added to every re-arm delay.
	Epsilon time.Duration
	// Tolerance is how late an aligned iteration may wake and still count as
	// on schedule. Beyond it the next onset is snapped onto the phase grid
	// again.
	Tolerance time.Duration
	Logger  *zap.Logger
	// Exec runs timer callbacks in the owner's serialized context. Defaults
	// to calling the function directly.
	Exec func(func())
	// OnAdvance fires after every dispatched entry with the position that
	// was played and the position the scheduler moved to.
	OnAdvance func(played, next cursor.Position)
	// OnArrest fires when the loop stops itself.
	OnArrest func(reason error)
}

// Scheduler walks the playback position through the grid. It is not safe
// for concurrent use: Start, Stop and the timer callbacks must all run in
// one serialized context (see Config.Exec).
type Scheduler struct {
	cfg     Config
	grid    GridSource
	pos     *cursor.Position
	log     *zap.Logger
	running bool
	// next is the ideal onset of the upcoming entry when aligned.
	next time.Time
	// generation fences off a re-arm left over from an earlier run.
	generation int
}

func New(g GridSource, pos *cursor.Position, cfg Config) *Scheduler {
	if cfg.Clock == nil {
		cfg.Clock = clock.Real{}
	}
	if cfg.Tempo == nil {
		cfg.Tempo = FixedTempo(constants.DefaultTempo)
	}
	if cfg.Velocity == 0 {
		cfg.Velocity = constants.DefaultVelocity
	}
	if cfg.Epsilon <= 0 {
		cfg.Epsilon = constants.RearmEpsilon
	}
	if cfg.Tolerance <= 0 {
		cfg.Tolerance = constants.AlignTolerance
	}
	if cfg.Exec == nil {
		cfg.Exec = func(f func()) { f() }
	}
	return &Scheduler{
		cfg:  cfg,
		grid: g,
		pos:  pos,
		log:  logger.OrNop(cfg.Logger).Named("playback"),
	}
}

func (s *Scheduler) State() State {
	if s.running {
		return Running
	}
	return Stopped
}

// Start runs the first iteration right away. It does nothing if the loop is
// already running.
func (s *Scheduler) Start() bool {
	if s.running {
		return false
	}
	s.running = true
	s.generation++
	s.next = time.Time{}
	if r, ok := s.cfg.Aligner.(interface{ Reset() }); ok {
		r.Reset()
	}
	s.log.Info("playback started", zap.Stringer("position", *s.pos))
	s.iterate(s.generation)
	return true
}

// Stop keeps whatever was already handed to the sink and prevents the next
// re-arm: the armed iteration wakes up, sees the flag and ends the loop.
func (s *Scheduler) Stop() bool {
	if !s.running {
		return false
	}
	s.running = false
	s.log.Info("playback stopped", zap.Stringer("position", *s.pos))
	return true
}

func (s *Scheduler) arrest(reason error) {
	s.running = false
	s.log.Warn("playback arrested", zap.Error(reason))
	if s.cfg.OnArrest != nil {
		s.cfg.OnArrest(reason)
	}
}

func (s *Scheduler) iterate(gen int) {
	if gen != s.generation || !s.running {
		return
	}

	bpm := s.cfg.Tempo.BPM()
	if !(bpm > 0) {
		s.arrest(ErrInvalidTempo)
		return
	}

	g := s.grid.Snapshot()
	if g.Empty() {
		s.arrest(ErrEmptyGrid)
		return
	}
	if !s.pos.Valid(g) {
		s.log.Debug("playback position out of range, restarting", zap.Stringer("position", *s.pos))
		*s.pos, _ = cursor.First(g)
	}
	entry, _ := g.Entry(s.pos.Bar, s.pos.Note)

	now := s.cfg.Clock.Now()
	ideal, at := s.onset(entry, now)
	s.dispatch(entry, bpm, at)

	played := *s.pos
	s.pos.Advance(g)
	if s.cfg.OnAdvance != nil {
		s.cfg.OnAdvance(played, *s.pos)
	}

	length := duration.BeatsToDuration(entry.Beats(), bpm)
	delay := ideal.Sub(now) + length + s.cfg.Epsilon
	if delay < s.cfg.Epsilon {
		delay = s.cfg.Epsilon
	}
	if s.cfg.Aligner != nil {
		s.next = ideal.Add(length)
	}
	s.cfg.Clock.AfterFunc(delay, func() {
		s.cfg.Exec(func() { s.iterate(gen) })
	})
}

// onset returns when the entry should ideally sound and when it is actually
// dispatched. An aligned loop that wakes within the tolerance of the onset
// it was armed for keeps that onset as its reference, so the re-arm epsilon
// and timer latency do not pile up. Otherwise the onset is snapped forward
// onto the phase grid.
func (s *Scheduler) onset(entry model.Entry, now time.Time) (ideal, at time.Time) {
	if s.cfg.Aligner != nil && !s.next.IsZero() && now.Sub(s.next) <= s.cfg.Tolerance {
		if s.next.After(now) {
			return s.next, s.next
		}
		return s.next, now
	}
	at = s.target(entry, now)
	return at, at
}

// target is the shared start time of every note in the entry: the latest of
// the per-note aligned instants, so that a chord starts together.
func (s *Scheduler) target(entry model.Entry, now time.Time) time.Time {
	if s.cfg.Aligner == nil {
		return now
	}
	at := now
	later := func(t time.Time) {
		if t.After(at) {
			at = t
		}
	}
	codes := append(append([]duration.Code(nil), entry.TrebleDurationCodes...), entry.BassDurationCodes...)
	if len(codes) == 0 {
		codes = []duration.Code{entry.DurationCode}
	}
	for _, c := range codes {
		later(s.cfg.Aligner.AlignToNextPhase(c))
	}
	return at
}

// dispatch hands the treble onsets, then the bass onsets, to the sink. Notes
// of one register that share a duration code go out together as a chord,
// sounding for their own code rather than the merged entry length.
func (s *Scheduler) dispatch(entry model.Entry, bpm float64, at time.Time) {
	if entry.IsPause || s.cfg.Sink == nil {
		return
	}
	for _, clef := range []model.Clef{model.Treble, model.Bass} {
		pitches, codes := entry.Onsets(clef)
		for _, grp := range groupByCode(pitches, codes) {
			dur := grp.code.Duration(bpm)
			if err := s.cfg.Sink.Play(grp.pitches, s.cfg.Velocity, dur, at); err != nil {
				s.log.Error("note dispatch failed",
					zap.Stringer("clef", clef),
					zap.Stringers("pitches", grp.pitches),
					zap.Error(err))
			}
		}
	}
}

type chordGroup struct {
	code    duration.Code
	pitches []pitch.Pitch
}

func groupByCode(pitches []pitch.Pitch, codes []duration.Code) []chordGroup {
	var groups []chordGroup
	index := make(map[duration.Code]int)
	for i, p := range pitches {
		code := codes[i]
		gi, ok := index[code]
		if !ok {
			gi = len(groups)
			index[code] = gi
			groups = append(groups, chordGroup{code: code})
		}
		groups[gi].pitches = append(groups[gi].pitches, p)
	}
	return groups
}
