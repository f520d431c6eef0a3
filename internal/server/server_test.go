package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"testing"

	"github.com/hailam/chessmind/internal/config"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func newTestServer() *Server {
	cfg := config.DefaultServer()
	cfg.StaticDir = os.TempDir()
	return New(cfg)
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeReport(t *testing.T, rec *httptest.ResponseRecorder) Report {
	t.Helper()
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, body %q", rec.Code, rec.Body.String())
	}
	var rep Report
	if err := json.NewDecoder(rec.Body).Decode(&rep); err != nil {
		t.Fatalf("Decode report: %v", err)
	}
	return rep
}

func legalCount(rep Report) int {
	n := 0
	for _, dests := range rep.Legal {
		n += len(dests)
	}
	return n
}

func TestNewGame(t *testing.T) {
	s := newTestServer()
	rep := decodeReport(t, get(t, s, "/engine/newgame?fen="+url.QueryEscape(startFEN)))

	if rep.FEN != startFEN {
		t.Errorf("FEN = %s, want the starting position", rep.FEN)
	}
	if rep.Turn != "w" {
		t.Errorf("Turn = %s, want w", rep.Turn)
	}
	if got := legalCount(rep); got != 20 {
		t.Errorf("Legal move count = %d, want 20", got)
	}
	if rep.InCheck || rep.InCheckmate || rep.InDraw {
		t.Errorf("Fresh game reports check=%v mate=%v draw=%v", rep.InCheck, rep.InCheckmate, rep.InDraw)
	}
}

func TestNewGameMissingFEN(t *testing.T) {
	s := newTestServer()
	if rec := get(t, s, "/engine/newgame"); rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestNewGameBadFEN(t *testing.T) {
	s := newTestServer()
	if rec := get(t, s, "/engine/newgame?fen=gibberish"); rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestMove(t *testing.T) {
	s := newTestServer()
	rep := decodeReport(t, get(t, s, "/engine/move/e2e4?fen="+url.QueryEscape(startFEN)))

	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if rep.FEN != want {
		t.Errorf("FEN after e2e4:\n want %s\n got  %s", want, rep.FEN)
	}
	if rep.Turn != "b" {
		t.Errorf("Turn = %s, want b", rep.Turn)
	}
	if rep.LastMove != "e2e4" {
		t.Errorf("LastMove = %s, want e2e4", rep.LastMove)
	}
}

func TestMoveBadSource(t *testing.T) {
	s := newTestServer()
	if rec := get(t, s, "/engine/move/e5e6?fen="+url.QueryEscape(startFEN)); rec.Code != http.StatusBadRequest {
		t.Errorf("Status = %d, want 400", rec.Code)
	}
}

func TestSearch(t *testing.T) {
	s := newTestServer()
	rep := decodeReport(t, get(t, s, "/engine/search?fen="+url.QueryEscape(startFEN)))

	// A fresh game opens with the scripted king-pawn push.
	want := "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"
	if rep.FEN != want {
		t.Errorf("FEN after search:\n want %s\n got  %s", want, rep.FEN)
	}
	if rep.Turn != "b" {
		t.Errorf("Turn = %s, want b", rep.Turn)
	}
}

func TestSearchCheckmate(t *testing.T) {
	s := newTestServer()
	mate := "rnbqkbnr/1ppp1Qp1/p6p/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 2 4"
	rep := decodeReport(t, get(t, s, "/engine/search?fen="+url.QueryEscape(mate)))

	if !rep.InCheckmate {
		t.Error("Expected in_checkmate to be true")
	}
	if rep.FEN != mate {
		t.Errorf("Mated position should be returned unchanged, got %s", rep.FEN)
	}
	if got := legalCount(rep); got != 0 {
		t.Errorf("Legal move count = %d, want 0", got)
	}
}

func TestStaticFallback(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>board</html>"), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg := config.DefaultServer()
	cfg.StaticDir = dir
	s := New(cfg)

	rec := get(t, s, "/index.html")
	if rec.Code != http.StatusOK {
		t.Fatalf("Status = %d, want 200", rec.Code)
	}
	if rec.Body.String() != "<html>board</html>" {
		t.Errorf("Body = %q", rec.Body.String())
	}
}
