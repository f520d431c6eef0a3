package board

import "fmt"

// MakeMove parses a UCI move string (four characters, plus an optional
// promotion letter), applies it and flips the side to move. Unknown
// promotion letters are treated as no promotion. The only application
// error is a source square without a piece of the side to move; shape
// legality is the legal-move layer's job.
func (p *Position) MakeMove(uci string) error {
	if len(uci) < 4 {
		return fmt.Errorf("invalid move %q: need at least 4 characters", uci)
	}

	from, err := ParseSquare(uci[0:2])
	if err != nil {
		return fmt.Errorf("invalid move %q: %v", uci, err)
	}
	to, err := ParseSquare(uci[2:4])
	if err != nil {
		return fmt.Errorf("invalid move %q: %v", uci, err)
	}

	promotion := Pawn
	if len(uci) > 4 {
		promotion = PromotionFromChar(uci[4])
	}

	if err := p.apply(from, to, promotion); err != nil {
		return err
	}

	p.SideToMove = p.SideToMove.Other()
	return nil
}

// apply performs a move for the side to move without flipping the active
// color.
func (p *Position) apply(from, to Square, promotion PieceType) error {
	us := p.SideToMove
	piece := p.PieceAt(from)
	if piece == NoPiece || piece.Color() != us {
		return fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	pt := piece.Type()

	captured := false

	// Capture on the destination square.
	target := p.PieceAt(to)
	if target != NoPiece {
		p.removePiece(to)
		captured = true

		// Capturing a rook on its home square removes that castling right.
		switch {
		case target == WhiteRook && to == H1:
			p.CastlingRights &^= WhiteKingSideCastle
		case target == WhiteRook && to == A1:
			p.CastlingRights &^= WhiteQueenSideCastle
		case target == BlackRook && to == H8:
			p.CastlingRights &^= BlackKingSideCastle
		case target == BlackRook && to == A8:
			p.CastlingRights &^= BlackQueenSideCastle
		}
	}

	// En passant capture: the captured pawn stands behind the target square.
	if pt == Pawn && to == p.EnPassant && from.File() != to.File() && target == NoPiece {
		if us == White {
			p.removePiece(to - 8)
		} else {
			p.removePiece(to + 8)
		}
		captured = true
	}

	p.movePiece(from, to)

	// Promotion: a pawn reaching the last rank becomes the chosen piece.
	if pt == Pawn && promotion != Pawn && (to.Rank() == 7 || to.Rank() == 0) {
		p.removePiece(to)
		p.setPiece(NewPiece(promotion, us), to)
	}

	// Castling: the king moves two files and the rook jumps over it.
	if pt == King && abs(to.File()-from.File()) == 2 {
		if to.File() == 6 { // king side
			p.movePiece(to+1, to-1)
		} else { // queen side
			p.movePiece(to-2, to+1)
		}
	}

	// Castling availability after king or rook moves.
	switch {
	case pt == King && us == White:
		p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
	case pt == King && us == Black:
		p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
	case pt == Rook && from == A1 && us == White:
		p.CastlingRights &^= WhiteQueenSideCastle
	case pt == Rook && from == H1 && us == White:
		p.CastlingRights &^= WhiteKingSideCastle
	case pt == Rook && from == A8 && us == Black:
		p.CastlingRights &^= BlackQueenSideCastle
	case pt == Rook && from == H8 && us == Black:
		p.CastlingRights &^= BlackKingSideCastle
	}

	// En passant target after a double pawn push, else cleared.
	if pt == Pawn && (int(to)-int(from) == 16 || int(from)-int(to) == 16) {
		p.EnPassant = Square((int(from) + int(to)) / 2)
	} else {
		p.EnPassant = NoSquare
	}

	if pt == Pawn || captured {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}

	if us == Black {
		p.FullMoveNumber++
	}

	return nil
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
