package board

import (
	"math/rand"
	"sort"
)

// PieceMove is one destination for a piece, with an optional promotion.
// The Pawn sentinel in Promotion means no promotion.
type PieceMove struct {
	To        Square
	Promotion PieceType
}

// UCI returns the move string for this move from the given source square.
func (m PieceMove) UCI(from Square) string {
	s := from.String() + m.To.String()
	if m.Promotion != Pawn {
		s += string(m.Promotion.Char())
	}
	return s
}

// PieceMoves is a piece on a square together with its ordered moves.
type PieceMoves struct {
	From  PieceOnSquare
	Moves []PieceMove
}

// promotionOrder is the fixed expansion order for promotion moves.
var promotionOrder = [4]PieceType{Queen, Rook, Bishop, Knight}

// LegalMoves holds the filtered legal moves of the side to move.
type LegalMoves struct {
	moves  []PieceMoves
	active Color
}

// GenerateLegalMoves filters the pseudo-legal moves by check: each
// candidate is applied to a copy (promoting to Queen, which has the same
// check outcome as any other choice) and dropped if the mover would remain
// in check. A pawn reaching the last rank expands into the four promotion
// variants. For Black, destination lists are reversed so nearer squares
// from Black's perspective come first.
func (p *Position) GenerateLegalMoves() *LegalMoves {
	us := p.SideToMove
	lm := &LegalMoves{active: us}

	for _, pt := range p.PseudoLegalMoves() {
		var kept []Square
		for _, to := range pt.Targets.Squares() {
			trial := *p
			if err := trial.apply(pt.From.Square, to, Queen); err != nil {
				continue
			}
			if trial.IsInCheck() {
				continue
			}
			kept = append(kept, to)
		}
		if len(kept) == 0 {
			continue
		}

		if us == Black {
			for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
				kept[i], kept[j] = kept[j], kept[i]
			}
		}

		promoRank := 7
		if us == Black {
			promoRank = 0
		}

		moves := make([]PieceMove, 0, len(kept))
		for _, to := range kept {
			if pt.From.Piece.Type() == Pawn && to.Rank() == promoRank {
				for _, promo := range promotionOrder {
					moves = append(moves, PieceMove{To: to, Promotion: promo})
				}
			} else {
				moves = append(moves, PieceMove{To: to, Promotion: Pawn})
			}
		}

		lm.moves = append(lm.moves, PieceMoves{From: pt.From, Moves: moves})
	}

	return lm
}

// Len returns the total number of legal moves.
func (lm *LegalMoves) Len() int {
	n := 0
	for _, pm := range lm.moves {
		n += len(pm.Moves)
	}
	return n
}

// All returns the legal moves grouped by piece, in generation order.
func (lm *LegalMoves) All() []PieceMoves {
	return lm.moves
}

// Sorted returns the moves ordered by descending piece type, and within a
// type with the piece furthest from its home rank first.
func (lm *LegalMoves) Sorted() []PieceMoves {
	sorted := make([]PieceMoves, len(lm.moves))
	copy(sorted, lm.moves)

	sort.SliceStable(sorted, func(i, j int) bool {
		pi, pj := sorted[i].From.Piece.Type(), sorted[j].From.Piece.Type()
		if pi != pj {
			return pi > pj
		}
		if lm.active == White {
			return sorted[i].From.Square > sorted[j].From.Square
		}
		return sorted[i].From.Square < sorted[j].From.Square
	})

	return sorted
}

// IsLegal reports whether the piece may move to the square, ignoring the
// promotion choice.
func (lm *LegalMoves) IsLegal(from PieceOnSquare, to Square) bool {
	for _, pm := range lm.moves {
		if pm.From != from {
			continue
		}
		for _, m := range pm.Moves {
			if m.To == to {
				return true
			}
		}
	}
	return false
}

// RandomMove picks a piece uniformly at random and then one of its moves
// uniformly at random. The selection is not uniform over all moves. The
// result carries exactly one move; ok is false when there are no legal
// moves.
func (lm *LegalMoves) RandomMove(r *rand.Rand) (PieceMoves, bool) {
	if len(lm.moves) == 0 {
		return PieceMoves{}, false
	}
	pm := lm.moves[r.Intn(len(lm.moves))]
	m := pm.Moves[r.Intn(len(pm.Moves))]
	return PieceMoves{From: pm.From, Moves: []PieceMove{m}}, true
}

// ToJSON returns the legal moves as a map from source square to destination
// strings, with promotion suffixes where applicable.
func (lm *LegalMoves) ToJSON() map[string][]string {
	out := make(map[string][]string, len(lm.moves))
	for _, pm := range lm.moves {
		from := pm.From.Square.String()
		for _, m := range pm.Moves {
			dest := m.To.String()
			if m.Promotion != Pawn {
				dest += string(m.Promotion.Char())
			}
			out[from] = append(out[from], dest)
		}
	}
	return out
}
