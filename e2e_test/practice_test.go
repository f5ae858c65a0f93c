//go:build e2e
// +build e2e

package e2e_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/jsphweid/staffgrid/clock"
	"github.com/jsphweid/staffgrid/cmd"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/piece"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/session"
	"github.com/jsphweid/staffgrid/sink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const scale = `{
  "title": "scale",
  "tempo": 60,
  "treble": [[{"pitches": "C4", "duration": "q"}, {"pitches": "E4", "duration": "q"}, {"pitches": "Pause", "duration": "h"}]],
  "bass": [[{"pitches": "C3", "duration": "h"}, {"pitches": "G2", "duration": "h"}]]
}`

type fixture struct {
	server  *cmd.Server
	handler http.Handler
	clock   *clock.Virtual
	sink    *sink.Recorder
}

func newFixture(t *testing.T) *fixture {
	p, err := piece.Decode(strings.NewReader(scale))
	require.NoError(t, err)
	f := &fixture{
		clock: clock.NewVirtual(time.Date(2022, 7, 1, 12, 0, 0, 0, time.UTC)),
		sink:  &sink.Recorder{},
	}
	f.server = cmd.NewServer(p, nil, session.WithClock(f.clock), session.WithSink(f.sink))
	f.handler = f.server.Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body any, out any) *http.Response {
	var r io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		r = strings.NewReader(b)
	default:
		data, err := json.Marshal(b)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	w := httptest.NewRecorder()
	f.handler.ServeHTTP(w, req)

	resp := w.Result()
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func held(names ...string) model.MatchRequestBody {
	ps, err := pitch.ParseAll(names)
	if err != nil {
		panic(err)
	}
	return model.MatchRequestBody{Held: ps}
}

func TestGridE2E(t *testing.T) {
	f := newFixture(t)

	var grid model.GridResponse
	resp := f.do(t, http.MethodGet, "/grid", nil, &grid)

	assert := assert.New(t)
	assert.Equal(200, resp.StatusCode)
	assert.Equal(f.server.ID, resp.Header.Get("X-Session-Id"))
	assert.Len(grid.Bars, 1)
	assert.Len(grid.Bars[0], 3)
	assert.Equal([]pitch.Pitch{pitch.MustParse("C4"), pitch.MustParse("C3")}, grid.Bars[0][0].AllPitches)
	assert.Equal([]model.Highlight{{Bar: 0, Note: 0, Color: model.SelectionColor}}, grid.Highlights)

	var entry model.Entry
	resp = f.do(t, http.MethodGet, "/grid/0/2", nil, &entry)
	assert.Equal(200, resp.StatusCode)
	assert.Equal(2.0, entry.StartTime)
	assert.Equal([]pitch.Pitch{pitch.MustParse("G2")}, entry.AllPitches)

	resp = f.do(t, http.MethodGet, "/grid/3/0", nil, nil)
	assert.Equal(404, resp.StatusCode)
}

func TestPracticeE2E(t *testing.T) {
	f := newFixture(t)
	assert := assert.New(t)

	var m model.MatchResponse
	f.do(t, http.MethodPost, "/match", held("C4"), &m)
	assert.False(m.Matched)
	assert.Equal(model.PositionBody{}, m.Selection)

	f.do(t, http.MethodPost, "/match", held("C3", "C4"), &m)
	assert.True(m.Matched)
	assert.Equal(model.PositionBody{Bar: 0, Note: 1}, m.Selection)
	assert.Equal([]pitch.Pitch{pitch.MustParse("E4")}, m.Target)

	var mode model.ModeRequestBody
	resp := f.do(t, http.MethodPut, "/mode", model.ModeRequestBody{Mode: "pitch-class"}, &mode)
	assert.Equal(200, resp.StatusCode)
	assert.Equal("pitch-class", mode.Mode)

	f.do(t, http.MethodPost, "/match", held("E6"), &m)
	assert.True(m.Matched)
	assert.Equal(model.PositionBody{Bar: 0, Note: 2}, m.Selection)

	var pos model.PositionsResponse
	f.do(t, http.MethodPost, "/selection/retreat", nil, &pos)
	assert.Equal(model.PositionBody{Bar: 0, Note: 1}, pos.Selection)
	f.do(t, http.MethodPut, "/selection", model.PositionBody{Bar: 5, Note: 5}, &pos)
	assert.Equal(model.PositionBody{}, pos.Selection)
	resp = f.do(t, http.MethodPost, "/selection/retreat", nil, nil)
	assert.Equal(http.StatusConflict, resp.StatusCode)
	f.do(t, http.MethodPost, "/selection/advance", nil, &pos)
	assert.Equal(model.PositionBody{Bar: 0, Note: 1}, pos.Selection)

	resp = f.do(t, http.MethodPut, "/mode", model.ModeRequestBody{Mode: "loose"}, nil)
	assert.Equal(400, resp.StatusCode)
}

func TestPlaybackE2E(t *testing.T) {
	f := newFixture(t)
	assert := assert.New(t)

	var pos model.PositionsResponse
	f.do(t, http.MethodPost, "/playback/start", nil, &pos)
	assert.True(pos.Playing)
	assert.Equal(model.PositionBody{Bar: 0, Note: 1}, pos.Playback)
	assert.Len(f.sink.Played(), 2)

	f.clock.Advance(1005 * time.Millisecond)
	f.do(t, http.MethodGet, "/positions", nil, &pos)
	assert.Equal(model.PositionBody{Bar: 0, Note: 2}, pos.Playback)
	assert.Len(f.sink.Played(), 3)

	f.do(t, http.MethodPost, "/playback/stop", nil, &pos)
	assert.False(pos.Playing)
	f.clock.Advance(10 * time.Second)
	assert.Len(f.sink.Played(), 3)
}

func TestReplacePieceE2E(t *testing.T) {
	f := newFixture(t)
	assert := assert.New(t)

	var pos model.PositionsResponse
	f.do(t, http.MethodPut, "/selection", model.PositionBody{Bar: 0, Note: 2}, &pos)
	assert.Equal(model.PositionBody{Bar: 0, Note: 2}, pos.Selection)

	var grid model.GridResponse
	resp := f.do(t, http.MethodPut, "/piece", `{"treble": [[{"pitches": "A4", "duration": "w"}]], "bass": []}`, &grid)
	assert.Equal(200, resp.StatusCode)
	assert.Len(grid.Bars, 1)
	assert.Len(grid.Bars[0], 1)

	f.do(t, http.MethodGet, "/positions", nil, &pos)
	assert.Equal(model.PositionBody{}, pos.Selection)

	resp = f.do(t, http.MethodPut, "/piece", `{"treble": [[{"pitches": "A4", "duration": "z"}]]}`, nil)
	assert.Equal(400, resp.StatusCode)

	resp = f.do(t, http.MethodPut, "/tempo", model.TempoRequestBody{BPM: -1}, nil)
	assert.Equal(400, resp.StatusCode)
	resp = f.do(t, http.MethodPut, "/tempo", model.TempoRequestBody{BPM: 140}, nil)
	assert.Equal(200, resp.StatusCode)
}
