package cmd

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/jsphweid/staffgrid/constants"
	"github.com/jsphweid/staffgrid/cursor"
	"github.com/jsphweid/staffgrid/logger"
	"github.com/jsphweid/staffgrid/match"
	"github.com/jsphweid/staffgrid/model"
	"github.com/jsphweid/staffgrid/piece"
	"github.com/jsphweid/staffgrid/pitch"
	"github.com/jsphweid/staffgrid/playback"
	"github.com/jsphweid/staffgrid/session"
	"github.com/jsphweid/staffgrid/sink"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", constants.GetAddr(), "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [piece]",
	Short: "Serves the grid, both cursors and the matcher over HTTP",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := piecePath(args)
		if err != nil {
			return err
		}
		p, err := LoadPiece(path)
		if err != nil {
			return err
		}
		s := NewServer(p, log)
		log.Info("serving", zap.String("addr", serveAddr), zap.String("piece", path), zap.String("session", s.ID))
		return http.ListenAndServe(serveAddr, s.Router())
	},
}

// Server exposes one practice session over HTTP.
type Server struct {
	ID      string
	Session *session.Session
	piece   *piece.Piece
	tempo   *playback.TempoVar
	log     *zap.Logger
}

// NewServer wires a session around p. Played notes go to the log unless
// another sink is passed in opts.
func NewServer(p *piece.Piece, l *zap.Logger, opts ...session.Option) *Server {
	l = logger.OrNop(l)
	s := &Server{
		ID:    uuid.New().String(),
		piece: p,
		tempo: playback.NewTempoVar(tempoFor(p)),
		log:   l.Named("http"),
	}
	defaults := []session.Option{
		session.WithLogger(l),
		session.WithTempo(s.tempo),
		session.WithSink(sink.Log{Logger: l.Named("sink")}),
		session.WithAlignment(true),
	}
	s.Session = session.New(p, append(defaults, opts...)...)
	return s
}

func (s *Server) Router() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/grid", s.HandleGrid).Methods("GET")
	router.HandleFunc("/grid/{bar:[0-9]+}/{note:[0-9]+}", s.HandleEntry).Methods("GET")
	router.HandleFunc("/playback/start", s.HandleStart).Methods("POST")
	router.HandleFunc("/playback/stop", s.HandleStop).Methods("POST")
	router.HandleFunc("/positions", s.HandlePositions).Methods("GET")
	router.HandleFunc("/selection", s.HandleSetSelection).Methods("PUT")
	router.HandleFunc("/selection/advance", s.HandleAdvance).Methods("POST")
	router.HandleFunc("/selection/retreat", s.HandleRetreat).Methods("POST")
	router.HandleFunc("/match", s.HandleMatch).Methods("POST")
	router.HandleFunc("/mode", s.HandleMode).Methods("PUT")
	router.HandleFunc("/tempo", s.HandleTempo).Methods("PUT")
	router.HandleFunc("/piece", s.HandlePiece).Methods("PUT")
	router.Use(s.sessionHeader)

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut},
		ExposedHeaders: []string{"X-Session-Id"},
	})
	return c.Handler(router)
}

func (s *Server) sessionHeader(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Session-Id", s.ID)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Warn("could not write response", zap.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func body(p cursor.Position) model.PositionBody {
	return model.PositionBody{Bar: p.Bar, Note: p.Note}
}

func (s *Server) HandleGrid(w http.ResponseWriter, r *http.Request) {
	g := s.Session.Grid()
	bars := g.Bars
	if bars == nil {
		bars = [][]model.Entry{}
	}
	s.writeJSON(w, http.StatusOK, model.GridResponse{Bars: bars, Highlights: s.Session.Highlights()})
}

func (s *Server) HandleEntry(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	bar, _ := strconv.Atoi(vars["bar"])
	note, _ := strconv.Atoi(vars["note"])
	entry, ok := s.Session.GridEntry(bar, note)
	if !ok {
		s.writeError(w, http.StatusNotFound, "no entry at that position")
		return
	}
	s.writeJSON(w, http.StatusOK, entry)
}

func (s *Server) HandleStart(w http.ResponseWriter, r *http.Request) {
	s.Session.Start()
	s.HandlePositions(w, r)
}

func (s *Server) HandleStop(w http.ResponseWriter, r *http.Request) {
	s.Session.Stop()
	s.HandlePositions(w, r)
}

func (s *Server) HandlePositions(w http.ResponseWriter, r *http.Request) {
	play, sel := s.Session.Positions()
	s.writeJSON(w, http.StatusOK, model.PositionsResponse{
		Playback:  body(play),
		Selection: body(sel),
		Playing:   s.Session.State() == playback.Running,
	})
}

func (s *Server) HandleSetSelection(w http.ResponseWriter, r *http.Request) {
	var input model.PositionBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read position: "+err.Error())
		return
	}
	s.Session.SetSelectionPosition(input.Bar, input.Note)
	s.HandlePositions(w, r)
}

func (s *Server) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	s.Session.AdvanceSelection()
	s.HandlePositions(w, r)
}

func (s *Server) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	if !s.Session.RetreatSelection() {
		s.writeError(w, http.StatusConflict, "already at the first entry")
		return
	}
	s.HandlePositions(w, r)
}

func (s *Server) HandleMatch(w http.ResponseWriter, r *http.Request) {
	var input model.MatchRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read held notes: "+err.Error())
		return
	}
	res := s.Session.Match(input.Held)
	target := res.Target
	if target == nil {
		target = []pitch.Pitch{}
	}
	s.writeJSON(w, http.StatusOK, model.MatchResponse{
		Matched:   res.Matched,
		Target:    target,
		Selection: body(res.Selection),
	})
}

func (s *Server) HandleMode(w http.ResponseWriter, r *http.Request) {
	var input model.ModeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read mode: "+err.Error())
		return
	}
	mode, err := match.ParseMode(input.Mode)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.Session.SetMatchMode(mode)
	s.writeJSON(w, http.StatusOK, model.ModeRequestBody{Mode: mode.String()})
}

func (s *Server) HandleTempo(w http.ResponseWriter, r *http.Request) {
	var input model.TempoRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		s.writeError(w, http.StatusBadRequest, "could not read tempo: "+err.Error())
		return
	}
	if input.BPM <= 0 {
		s.writeError(w, http.StatusBadRequest, playback.ErrInvalidTempo.Error())
		return
	}
	s.tempo.Set(input.BPM)
	s.writeJSON(w, http.StatusOK, input)
}

// HandlePiece replaces both staves. The session rebuilds the grid through
// its subscription and clamps the cursors.
func (s *Server) HandlePiece(w http.ResponseWriter, r *http.Request) {
	p, err := piece.Decode(r.Body)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if p.Tempo > 0 {
		s.tempo.Set(p.Tempo)
	}
	s.piece.Replace(p.Bars())
	s.log.Info("piece replaced", zap.Int("bars", p.NumBars()))
	s.HandleGrid(w, r)
}
