package session

import (
	"github.com/jsphweid/staffgrid/clock"
	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/match"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/playback"
	"go.uber.org/zap"
)

type options struct {
	logger         *zap.Logger
	clock          clock.Clock
	tempo          playback.Tempo
	sink           playback.Sink
	renderer       Renderer
	align          bool
	velocity       uint8
	mode           match.Mode
	playbackColor  model.Color
	selectionColor model.Color
}

// Option configures a Session.
type Option func(*options)

func defaultOptions() options {
	return options{
		logger:         zap.NewNop(),
		clock:          clock.Real{},
		tempo:          playback.FixedTempo(constants.DefaultTempo),
		velocity:       constants.DefaultVelocity,
		playbackColor:  model.PlaybackColor,
		selectionColor: model.SelectionColor,
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithClock(c clock.Clock) Option {
	return func(o *options) {
		o.clock = c
	}
}

func WithTempo(t playback.Tempo) Option {
	return func(o *options) {
		o.tempo = t
	}
}

// WithSink sets where played notes go. Without a sink playback still walks
// the grid but produces no sound.
func WithSink(s playback.Sink) Option {
	return func(o *options) {
		o.sink = s
	}
}

func WithRenderer(r Renderer) Option {
	return func(o *options) {
		o.renderer = r
	}
}

// WithAlignment snaps every onset forward onto the beat grid of its duration
// category. This corrects timer drift at the cost of some added latency.
func WithAlignment(on bool) Option {
	return func(o *options) {
		o.align = on
	}
}

func WithVelocity(v uint8) Option {
	return func(o *options) {
		o.velocity = v
	}
}

func WithMatchMode(m match.Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

func WithPlaybackColor(c model.Color) Option {
	return func(o *options) {
		o.playbackColor = c
	}
}

func WithSelectionColor(c model.Color) Option {
	return func(o *options) {
		o.selectionColor = c
	}
}
