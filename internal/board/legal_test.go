package board

import (
	"math/rand"
	"testing"

	"github.com/dylhunn/dragontoothmg"
	"github.com/google/go-cmp/cmp"
)

func TestStartingPositionMoveCount(t *testing.T) {
	pos := NewPosition()
	legal := pos.GenerateLegalMoves()
	if got := legal.Len(); got != 20 {
		t.Errorf("Starting position: expected 20 legal moves, got %d", got)
	}
}

// TestLegalMoveCountsAgainstOracle cross-checks the legal move count on
// standard verification positions against an independent generator.
func TestLegalMoveCountsAgainstOracle(t *testing.T) {
	fens := []struct {
		fen  string
		want int
	}{
		{StartFEN, 20},
		{"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1", 48},
		{"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - - 0 1", 14},
		{"r3k2r/Pppp1ppp/1b3nbN/nP6/BBP1P3/q4N2/Pp1P2PP/R2Q1RK1 w kq - 0 1", 6},
		{"rnbq1k1r/pp1Pbppp/2p5/8/2B5/8/PPP1NnPP/RNBQK2R w KQ - 1 8", 44},
	}

	for _, tc := range fens {
		pos, err := ParseFEN(tc.fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q) failed: %v", tc.fen, err)
		}
		got := pos.GenerateLegalMoves().Len()
		if got != tc.want {
			t.Errorf("%s: expected %d legal moves, got %d", tc.fen, tc.want, got)
		}

		oracle := dragontoothmg.ParseFen(tc.fen)
		if n := len(oracle.GenerateLegalMoves()); got != n {
			t.Errorf("%s: oracle found %d legal moves, engine found %d", tc.fen, n, got)
		}
	}
}

// TestLegalMoveClosure verifies that no legal move leaves the mover in
// check.
func TestLegalMoveClosure(t *testing.T) {
	fens := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq - 0 1",
		"rnb1kbnr/pppp1ppp/8/4p1q1/4P3/3P4/PPP2PPP/RNBQKBNR w KQkq - 2 3",
	}

	for _, fen := range fens {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("ParseFEN(%q) failed: %v", fen, err)
		}
		for _, pm := range pos.GenerateLegalMoves().All() {
			for _, m := range pm.Moves {
				trial := pos.Copy()
				uci := m.UCI(pm.From.Square)
				if err := trial.MakeMove(uci); err != nil {
					t.Fatalf("%s: MakeMove(%s) failed: %v", fen, uci, err)
				}
				if trial.ForOpponent().IsInCheck() {
					t.Errorf("%s: move %s leaves the mover in check", fen, uci)
				}
			}
		}
	}
}

func TestCheckDetection(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/1ppp1Qp1/p6p/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 2 4")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	if !pos.IsInCheck() {
		t.Error("Expected Black to be in check")
	}
	if got := pos.GenerateLegalMoves().Len(); got != 0 {
		t.Errorf("Expected checkmate with 0 legal moves, got %d", got)
	}
}

func TestCastlingAvailability(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/8/8/1Q1N1NP1/R3K2R w KQ - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	king := PieceOnSquare{Piece: WhiteKing, Square: E1}
	if !legal.IsLegal(king, G1) {
		t.Error("Expected king-side castling e1g1")
	}
	if !legal.IsLegal(king, C1) {
		t.Error("Expected queen-side castling e1c1")
	}
}

func TestCastlingBlocked(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/8/8/1Q1N1NP1/RN2K1NR w KQ - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	king := PieceOnSquare{Piece: WhiteKing, Square: E1}
	if legal.IsLegal(king, G1) {
		t.Error("King-side castling should be blocked by the g1 knight")
	}
	if legal.IsLegal(king, C1) {
		t.Error("Queen-side castling should be blocked by the b1 knight")
	}
}

func TestCastlingThroughCheck(t *testing.T) {
	pos, err := ParseFEN("4k3/8/8/8/8/8/5r2/R3K2R w KQ - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	king := PieceOnSquare{Piece: WhiteKing, Square: E1}
	if legal.IsLegal(king, G1) {
		t.Error("King-side castling should be barred: f1 is attacked by the f2 rook")
	}
	if !legal.IsLegal(king, C1) {
		t.Error("Queen-side castling should remain available")
	}
}

func TestPromotionExpansion(t *testing.T) {
	pos, err := ParseFEN("3k4/6P1/8/8/8/8/8/3K4 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	var pawn *PieceMoves
	for _, pm := range pos.GenerateLegalMoves().All() {
		if pm.From.Piece == WhitePawn {
			pawn = &pm
			break
		}
	}
	if pawn == nil {
		t.Fatal("No pawn moves generated")
	}

	want := []PieceMove{
		{To: G8, Promotion: Queen},
		{To: G8, Promotion: Rook},
		{To: G8, Promotion: Bishop},
		{To: G8, Promotion: Knight},
	}
	if diff := cmp.Diff(want, pawn.Moves); diff != "" {
		t.Errorf("Promotion expansion mismatch (-want +got):\n%s", diff)
	}
}

func TestSortedOrder(t *testing.T) {
	pos := NewPosition()
	sorted := pos.GenerateLegalMoves().Sorted()

	wantFrom := []PieceOnSquare{
		{WhiteKnight, G1},
		{WhiteKnight, B1},
		{WhitePawn, H2},
		{WhitePawn, G2},
		{WhitePawn, F2},
		{WhitePawn, E2},
		{WhitePawn, D2},
		{WhitePawn, C2},
		{WhitePawn, B2},
		{WhitePawn, A2},
	}

	if len(sorted) != len(wantFrom) {
		t.Fatalf("Sorted returned %d entries, want %d", len(sorted), len(wantFrom))
	}
	for i, pm := range sorted {
		if pm.From != wantFrom[i] {
			t.Errorf("Sorted[%d] = %s on %s, want %s on %s",
				i, pm.From.Piece, pm.From.Square, wantFrom[i].Piece, wantFrom[i].Square)
		}
	}
}

func TestRandomMoveSeeded(t *testing.T) {
	pos := NewPosition()
	legal := pos.GenerateLegalMoves()

	r := rand.New(rand.NewSource(7))
	picked, ok := legal.RandomMove(r)
	if !ok {
		t.Fatal("Expected a random move from the starting position")
	}
	if len(picked.Moves) != 1 {
		t.Fatalf("RandomMove returned %d moves, want exactly 1", len(picked.Moves))
	}
	if !legal.IsLegal(picked.From, picked.Moves[0].To) {
		t.Errorf("RandomMove returned an illegal move %s from %s",
			picked.Moves[0].To, picked.From.Square)
	}
}

func TestRandomMoveNone(t *testing.T) {
	pos, err := ParseFEN("rnbqkbnr/1ppp1Qp1/p6p/4p3/2B1P3/8/PPPP1PPP/RNB1K1NR b KQkq - 2 4")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	legal := pos.GenerateLegalMoves()
	if _, ok := legal.RandomMove(rand.New(rand.NewSource(1))); ok {
		t.Error("Expected no random move in a mated position")
	}
}

func TestLegalMovesToJSON(t *testing.T) {
	pos, err := ParseFEN("3k4/8/8/8/8/8/6P1/3K4 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}

	got := pos.GenerateLegalMoves().ToJSON()
	want := map[string][]string{
		"d1": {"c1", "e1", "c2", "d2", "e2"},
		"g2": {"g3", "g4"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Legal move JSON mismatch (-want +got):\n%s", diff)
	}
}
