// Package server exposes the engine over HTTP. Positions travel as FEN in
// the query string, so every request is self-contained; the only state held
// between requests is the policy Game with its stage.
package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/hailam/chessmind/internal/board"
	"github.com/hailam/chessmind/internal/config"
	"github.com/hailam/chessmind/internal/policy"
)

// Report is the position summary returned by every engine endpoint.
type Report struct {
	FEN         string              `json:"fen"`
	LastMove    string              `json:"last_move"`
	Turn        string              `json:"turn"`
	Legal       map[string][]string `json:"legal"`
	InCheck     bool                `json:"in_check"`
	InCheckmate bool                `json:"in_checkmate"`
	InDraw      bool                `json:"in_draw"`
}

// Server serves the engine endpoints and a static file tree for everything
// else.
type Server struct {
	cfg config.Server

	mu   sync.Mutex
	game *policy.Game
}

// New returns a server with a fresh game.
func New(cfg config.Server) *Server {
	return &Server{cfg: cfg, game: policy.NewGame()}
}

// Handler returns the route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /engine/newgame", s.handleNewGame)
	mux.HandleFunc("GET /engine/move/{move}", s.handleMove)
	mux.HandleFunc("GET /engine/search", s.handleSearch)
	mux.Handle("/", http.FileServer(http.Dir(s.cfg.StaticDir)))
	return mux
}

// ListenAndServe runs the HTTP server with sane timeouts until it fails.
func (s *Server) ListenAndServe() error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	log.Printf("server: listening on %s", s.cfg.Addr)
	return srv.ListenAndServe()
}

// parsePosition reads the fen query parameter.
func parsePosition(r *http.Request) (*board.Position, error) {
	fen := r.URL.Query().Get("fen")
	if fen == "" {
		return nil, fmt.Errorf("missing fen parameter")
	}
	return board.ParseFEN(fen)
}

// report builds the position summary after any move has been applied.
func (s *Server) report(p *board.Position) Report {
	legal := p.GenerateLegalMoves()
	inCheck := p.IsInCheck()
	noMoves := legal.Len() == 0

	turn := "w"
	if p.SideToMove == board.Black {
		turn = "b"
	}

	return Report{
		FEN:         p.ToFEN(),
		LastMove:    s.game.LastMove(),
		Turn:        turn,
		Legal:       legal.ToJSON(),
		InCheck:     inCheck,
		InCheckmate: inCheck && noMoves,
		InDraw:      (!inCheck && noMoves) || p.IsDraw(),
	}
}

func (s *Server) handleNewGame(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := parsePosition(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	s.game = policy.NewGame()
	log.Printf("server: new game from %s", pos.ToFEN())
	s.respond(w, r, s.report(pos))
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := parsePosition(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	move := r.PathValue("move")
	if err := pos.MakeMove(move); err != nil {
		s.badRequest(w, r, err)
		return
	}

	s.game.OpponentMove(move)
	log.Printf("server: applied %s, now %s", move, pos.ToFEN())
	s.respond(w, r, s.report(pos))
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, err := parsePosition(r)
	if err != nil {
		s.badRequest(w, r, err)
		return
	}

	if move := s.game.BestMove(pos); move != "" {
		if err := pos.MakeMove(move); err != nil {
			s.badRequest(w, r, err)
			return
		}
		log.Printf("server: searched %s, now %s", move, pos.ToFEN())
	}
	s.respond(w, r, s.report(pos))
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, rep Report) {
	w.Header().Set("Content-Type", "application/json")
	if s.cfg.Debug {
		body, _ := json.Marshal(rep)
		log.Printf("server: %s %s -> %s", r.Method, r.URL.Path, body)
	}
	if err := json.NewEncoder(w).Encode(rep); err != nil {
		log.Printf("server: write response: %v", err)
	}
}

func (s *Server) badRequest(w http.ResponseWriter, r *http.Request, err error) {
	log.Printf("server: %s %s rejected: %v", r.Method, r.URL.Path, err)
	http.Error(w, err.Error(), http.StatusBadRequest)
}
