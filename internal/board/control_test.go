package board

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

// findPieceMoves returns the legal moves of the piece on the square.
func findPieceMoves(t *testing.T, p *Position, piece Piece, sq Square) PieceMoves {
	t.Helper()
	for _, pm := range p.GenerateLegalMoves().All() {
		if pm.From.Piece == piece && pm.From.Square == sq {
			return pm
		}
	}
	t.Fatalf("No legal moves for %s on %s", piece, sq)
	return PieceMoves{}
}

func TestControlValuesPawnStandoff(t *testing.T) {
	// White pawn c4 is attacked by the d5 pawn and undefended.
	pos, err := ParseFEN("4k3/8/8/3p4/2P5/8/8/4K3 w - - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	cs := NewControlSquares(pos)

	values, ok := cs.At(C4)
	if !ok {
		t.Fatal("Expected a control entry for c4")
	}
	want := ControlValues{SafePiece: -PieceValue[King], SafeMove: -PieceValue[King]}
	if diff := cmp.Diff(want, values); diff != "" {
		t.Errorf("Control values for c4 mismatch (-want +got):\n%s", diff)
	}

	if _, ok := cs.At(A8); ok {
		t.Error("Expected no control entry for a8: neither side reaches it")
	}

	pawn := PieceOnSquare{Piece: WhitePawn, Square: C4}
	if !cs.IsPieceAttacked(pawn) {
		t.Error("The c4 pawn should read as attacked")
	}
	if !cs.IsSafeToMove(WhitePawn, C5) {
		t.Error("c5 should be safe for the pawn: nothing reaches it")
	}

	moves := findPieceMoves(t, pos, WhitePawn, C4)
	if take, ok := cs.BestTake(WhitePawn, moves.Moves); !ok || take.To != D5 {
		t.Errorf("BestTake = %v ok=%v, want capture on d5", take.To, ok)
	}
	if trades := cs.Trades(pawn, moves.Moves); len(trades) != 1 || trades[0].To != D5 {
		t.Errorf("Trades = %v, want exactly the d5 capture", trades)
	}
	if sack, ok := cs.BestSack(WhitePawn, moves.Moves); !ok || sack.To != D5 {
		t.Errorf("BestSack = %v ok=%v, want capture on d5", sack.To, ok)
	}
}

func TestFirstHangingQueen(t *testing.T) {
	// The g5 queen hangs to the c1 bishop.
	pos, err := ParseFEN("rnb1kbnr/pppp1ppp/8/4p1q1/4P3/3P4/PPP2PPP/RNBQKBNR w KQkq - 2 3")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	cs := NewControlSquares(pos)

	moves := findPieceMoves(t, pos, WhiteBishop, C1)
	hanging, ok := cs.FirstHanging(WhiteBishop, moves.Moves)
	if !ok {
		t.Fatal("Expected the bishop to find the hanging queen")
	}
	if hanging.To != G5 {
		t.Errorf("FirstHanging = %s, want g5", hanging.To)
	}

	if take, ok := cs.BestTake(WhiteBishop, moves.Moves); !ok || take.To != G5 {
		t.Errorf("BestTake = %v ok=%v, want the g5 queen", take.To, ok)
	}
}

func TestAttackedKnightRetreats(t *testing.T) {
	// The e5 knight is attacked by the d6 pawn.
	pos, err := ParseFEN("rnq1kbnr/ppp1pppp/b2p4/4N3/8/8/PP1P1P1P/RNB1K2R w KQkq - 0 1")
	if err != nil {
		t.Fatalf("ParseFEN failed: %v", err)
	}
	cs := NewControlSquares(pos)

	knight := PieceOnSquare{Piece: WhiteKnight, Square: E5}
	if !cs.IsPieceAttacked(knight) {
		t.Error("The e5 knight should read as attacked")
	}

	moves := findPieceMoves(t, pos, WhiteKnight, E5)
	if _, ok := cs.BestTake(WhiteKnight, moves.Moves); ok {
		t.Error("No capture should qualify for the knight")
	}
	safest, ok := cs.SafestMove(WhiteKnight, moves.Moves)
	if !ok {
		t.Fatal("Expected a safe retreat for the knight")
	}
	if !cs.IsSafeToMove(WhiteKnight, safest.To) {
		t.Errorf("SafestMove returned an unsafe square %s", safest.To)
	}
}
