package board

// ControlValues describes who controls a square and how cheaply.
// SafePiece is the value of the most valuable friendly piece that can
// safely stand on the square; SafeMove the most valuable that can safely
// move to it this turn. Both are negative when the opponent holds the
// square.
type ControlValues struct {
	SafePiece int
	SafeMove  int
}

// ControlSquares evaluates, for every square, which side controls it and
// with what minimum piece value. Squares no piece of either side can reach
// have no entry.
type ControlSquares struct {
	pos     *Position
	present [64]bool
	values  [64]ControlValues
}

// NewControlSquares builds the control evaluation for the side to move.
//
// Defender and attacker counts come from the pseudo-legal move maps, but
// sliding pieces and pawns only "reach" a square when something stands on
// it to be captured. So for each square that is empty for one side, the
// other side's map is rebuilt on a copy with a pawn of the first side
// placed there (replacing any piece of the other side).
func NewControlSquares(p *Position) *ControlSquares {
	cs := &ControlSquares{pos: p}
	us := p.SideToMove

	activeMoves := p.PseudoLegalMoves()
	opponentMoves := p.ForOpponent().PseudoLegalMoves()

	for sq := A1; sq <= H8; sq++ {
		mask := SquareBB(sq)

		attackMap := opponentMoves
		if p.Occupied[us]&mask == 0 {
			trial := p.withPawnPlaced(sq, us)
			attackMap = trial.ForOpponent().PseudoLegalMoves()
		}

		defendMap := activeMoves
		if p.Occupied[us.Other()]&mask == 0 {
			trial := p.withPawnPlaced(sq, us.Other())
			defendMap = trial.PseudoLegalMoves()
		}

		defenders, minDefender := coverage(defendMap, mask)
		attackers, minAttacker := coverage(attackMap, mask)

		if defenders == 0 && attackers == 0 {
			continue
		}

		safePiece := -minDefender
		if defenders >= attackers {
			safePiece = minAttacker
		} else if minDefender < minAttacker {
			safePiece = minDefender
		}

		safeMove := -minDefender
		switch {
		case defenders-attackers >= 1:
			safeMove = minAttacker
		case defenders == attackers && minDefender != PieceValue[Pawn]:
			safeMove = PieceValue[Pawn]
		}

		cs.present[sq] = true
		cs.values[sq] = ControlValues{SafePiece: safePiece, SafeMove: safeMove}
	}

	return cs
}

// withPawnPlaced returns a copy with a pawn of the given color on the
// square, replacing any piece of the other color standing there.
func (p *Position) withPawnPlaced(sq Square, c Color) *Position {
	trial := *p
	if trial.Occupied[c.Other()]&SquareBB(sq) != 0 {
		trial.removePiece(sq)
	}
	trial.setPiece(NewPiece(Pawn, c), sq)
	return &trial
}

// coverage counts the map entries whose targets include the masked square
// and tracks the cheapest such piece. The minimum starts at the king value
// so an uncovered side reads as "only at king price".
func coverage(moves []PieceTargets, mask Bitboard) (int, int) {
	count := 0
	min := PieceValue[King]
	for _, pt := range moves {
		if pt.Targets&mask == 0 {
			continue
		}
		count++
		if v := pt.From.Piece.Value(); v < min {
			min = v
		}
	}
	return count, min
}

// At returns the control values for a square; ok is false when neither
// side reaches the square.
func (cs *ControlSquares) At(sq Square) (ControlValues, bool) {
	return cs.values[sq], cs.present[sq]
}

// safeMoveAt reads the SafeMove value for a square, defaulting to the king
// value for squares without an entry.
func (cs *ControlSquares) safeMoveAt(sq Square) int {
	if !cs.present[sq] {
		return PieceValue[King]
	}
	return cs.values[sq].SafeMove
}

// opponentValueAt returns the value of the opponent piece on the square,
// or 0 when the square holds none.
func (cs *ControlSquares) opponentValueAt(sq Square) int {
	piece := cs.pos.PieceAt(sq)
	if piece == NoPiece || piece.Color() == cs.pos.SideToMove {
		return 0
	}
	return piece.Value()
}

// IsSafeToMove reports whether the piece may enter the square without
// losing material.
func (cs *ControlSquares) IsSafeToMove(piece Piece, sq Square) bool {
	return cs.safeMoveAt(sq) >= piece.Value()
}

// IsPieceAttacked reports whether the piece stands on a square it cannot
// safely keep.
func (cs *ControlSquares) IsPieceAttacked(ps PieceOnSquare) bool {
	return cs.present[ps.Square] && cs.values[ps.Square].SafePiece < ps.Piece.Value()
}

// SafestMove returns the destination with the highest SafeMove among those
// the piece can enter safely; ok is false when none qualify.
func (cs *ControlSquares) SafestMove(piece Piece, moves []PieceMove) (PieceMove, bool) {
	maxControl := -1
	var best PieceMove
	for _, m := range moves {
		control := cs.safeMoveAt(m.To)
		if control >= piece.Value() && control > maxControl {
			maxControl = control
			best = m
		}
	}
	return best, maxControl >= 0
}

// BestTake returns the capture of the most valuable opponent piece,
// provided it is an equal or up-trade or the destination is safe for the mover;
// ok is false otherwise.
func (cs *ControlSquares) BestTake(piece Piece, moves []PieceMove) (PieceMove, bool) {
	maxValue := 0
	maxControl := -1
	var best PieceMove
	for _, m := range moves {
		if v := cs.opponentValueAt(m.To); v > maxValue {
			maxValue = v
			maxControl = cs.safeMoveAt(m.To)
			best = m
		}
	}
	if maxValue >= piece.Value() || maxControl >= piece.Value() {
		return best, maxValue > 0
	}
	return PieceMove{}, false
}

// BestSack returns the capture of the most valuable opponent piece,
// ignoring safety; ok is false when no capture is available.
func (cs *ControlSquares) BestSack(piece Piece, moves []PieceMove) (PieceMove, bool) {
	maxValue := 0
	var best PieceMove
	for _, m := range moves {
		if v := cs.opponentValueAt(m.To); v > maxValue {
			maxValue = v
			best = m
		}
	}
	return best, maxValue > 0
}

// FirstHanging returns the first destination in the given order that holds
// a strictly more valuable opponent piece, or any opponent piece on a
// square safe for the mover; ok is false when none matches.
func (cs *ControlSquares) FirstHanging(piece Piece, moves []PieceMove) (PieceMove, bool) {
	for _, m := range moves {
		v := cs.opponentValueAt(m.To)
		if v > piece.Value() || (v > 0 && cs.safeMoveAt(m.To) >= piece.Value()) {
			return m, true
		}
	}
	return PieceMove{}, false
}

// Trades returns the destinations holding an opponent piece of exactly the
// moving piece's value.
func (cs *ControlSquares) Trades(ps PieceOnSquare, moves []PieceMove) []PieceMove {
	var trades []PieceMove
	for _, m := range moves {
		if cs.opponentValueAt(m.To) == ps.Piece.Value() {
			trades = append(trades, m)
		}
	}
	return trades
}
