// Package policy selects moves with a fixed rule ladder over the legal
// moves and the control-square evaluation, instead of lookahead search.
package policy

import (
	"log"
	"math/rand"
	"time"

	"github.com/hailam/chessmind/internal/board"
)

// Stage is the coarse game phase. It starts at Initial and only ever
// advances.
type Stage int

const (
	StageInitial Stage = iota
	StageDeveloping
	StageMidgame
	StageEndgame
)

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StageInitial:
		return "initial"
	case StageDeveloping:
		return "developing"
	case StageMidgame:
		return "midgame"
	case StageEndgame:
		return "endgame"
	default:
		return "unknown"
	}
}

// Game holds the per-game policy state: the stage and the opponent's last
// move string.
type Game struct {
	stage    Stage
	lastMove string
	rng      *rand.Rand
}

// NewGame returns a fresh game at the initial stage.
func NewGame() *Game {
	return &Game{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// SetRand replaces the random source used by the fallback rule, so tests
// can seed it.
func (g *Game) SetRand(r *rand.Rand) {
	g.rng = r
}

// Stage returns the current game stage.
func (g *Game) Stage() Stage {
	return g.stage
}

// SetStage forces the stage, used when restoring a persisted game. The
// stage still never rewinds during play.
func (g *Game) SetStage(s Stage) {
	g.stage = s
}

// LastMove returns the opponent's last recorded move string.
func (g *Game) LastMove() string {
	return g.lastMove
}

// OpponentMove records the opponent's last move.
func (g *Game) OpponentMove(move string) {
	g.lastMove = move
}

// preset is a scripted move source: a piece on its expected square and the
// destinations to try in order.
type preset struct {
	piece board.Piece
	from  board.Square
	tos   []board.Square
}

var initialMovesWhite = []preset{
	{board.WhitePawn, board.E2, []board.Square{board.E4}},
	{board.WhitePawn, board.D2, []board.Square{board.D4}},
}

var initialMovesBlack = []preset{
	{board.BlackPawn, board.E7, []board.Square{board.E5}},
	{board.BlackPawn, board.D7, []board.Square{board.D5}},
}

var developingMovesWhite = []preset{
	{board.WhiteKing, board.E1, []board.Square{board.G1, board.C1}},
	{board.WhiteKnight, board.G1, []board.Square{board.F3, board.E2}},
	{board.WhiteKnight, board.B1, []board.Square{board.C3, board.D2}},
	{board.WhiteBishop, board.F1, []board.Square{board.C4, board.D3, board.E2, board.B5}},
	{board.WhitePawn, board.D2, []board.Square{board.D3, board.D4}},
	{board.WhiteRook, board.F1, []board.Square{board.E1}},
	{board.WhiteBishop, board.C1, []board.Square{board.F4, board.E3, board.D2, board.G5}},
	{board.WhitePawn, board.E2, []board.Square{board.E4, board.E3}},
	{board.WhiteQueen, board.D1, []board.Square{board.D2, board.E2}},
	{board.WhiteRook, board.A1, []board.Square{board.D1, board.C1}},
	{board.WhitePawn, board.H2, []board.Square{board.H3}},
}

var developingMovesBlack = []preset{
	{board.BlackKing, board.E8, []board.Square{board.G8, board.C8}},
	{board.BlackKnight, board.B8, []board.Square{board.C6, board.D7}},
	{board.BlackKnight, board.G8, []board.Square{board.F6, board.E7}},
	{board.BlackBishop, board.F8, []board.Square{board.C5, board.D6, board.E7, board.B4}},
	{board.BlackPawn, board.D7, []board.Square{board.D6, board.D5}},
	{board.BlackRook, board.F8, []board.Square{board.E8}},
	{board.BlackBishop, board.C8, []board.Square{board.F5, board.E6, board.D7, board.G4}},
	{board.BlackPawn, board.E7, []board.Square{board.E5, board.E6}},
	{board.BlackQueen, board.D8, []board.Square{board.D7, board.E7}},
	{board.BlackRook, board.A8, []board.Square{board.D8, board.C8}},
	{board.BlackPawn, board.H7, []board.Square{board.H6}},
}

// searchPresetMoves returns the first scripted move that is both legal and
// safe, or "" when none applies.
func searchPresetMoves(legal *board.LegalMoves, cs *board.ControlSquares, presets []preset) string {
	for _, pr := range presets {
		from := board.PieceOnSquare{Piece: pr.piece, Square: pr.from}
		for _, to := range pr.tos {
			if legal.IsLegal(from, to) && cs.IsSafeToMove(pr.piece, to) {
				log.Printf("policy: preset move %s from %s to %s", pr.piece, pr.from, to)
				return pr.from.String() + to.String()
			}
		}
	}
	return ""
}

// flankPushes pairs a minor-piece outpost with the rook-pawn push that
// challenges it.
var flankPushes = []struct {
	minorColor board.Color
	outpost    board.Square
	pawn       board.Piece
	from, to   board.Square
}{
	{board.Black, board.B4, board.WhitePawn, board.A2, board.A3},
	{board.Black, board.G4, board.WhitePawn, board.H2, board.H3},
	{board.White, board.B5, board.BlackPawn, board.A7, board.A6},
	{board.White, board.G5, board.BlackPawn, board.H7, board.H6},
}

// BestMove runs the rule ladder and returns a UCI move string. It returns
// "" only when there is no legal move at all; callers detect checkmate and
// stalemate before asking for a move.
func (g *Game) BestMove(p *board.Position) string {
	legal := p.GenerateLegalMoves()
	cs := board.NewControlSquares(p)

	sorted := legal.Sorted()

	// 1. Don't hang pieces: move attacked pieces away, preferring a
	// capture, then a safe retreat, then a trade-down.
	for _, pm := range sorted {
		if !cs.IsPieceAttacked(pm.From) {
			continue
		}
		if take, ok := cs.BestTake(pm.From.Piece, pm.Moves); ok {
			log.Printf("policy: attacked %s on %s takes on %s", pm.From.Piece, pm.From.Square, take.To)
			return take.UCI(pm.From.Square)
		}
		if safest, ok := cs.SafestMove(pm.From.Piece, pm.Moves); ok {
			log.Printf("policy: attacked %s on %s retreats to %s", pm.From.Piece, pm.From.Square, safest.To)
			return safest.UCI(pm.From.Square)
		}
		if sack, ok := cs.BestSack(pm.From.Piece, pm.Moves); ok {
			log.Printf("policy: attacked %s on %s sacks on %s", pm.From.Piece, pm.From.Square, sack.To)
			return sack.UCI(pm.From.Square)
		}
	}

	// 2. Take hanging material, attacking with the cheapest piece first.
	reversed := make([]board.PieceMoves, len(sorted))
	for i, pm := range sorted {
		reversed[len(sorted)-1-i] = pm
	}
	for _, pm := range reversed {
		if hanging, ok := cs.FirstHanging(pm.From.Piece, pm.Moves); ok {
			log.Printf("policy: %s on %s takes hanging piece on %s", pm.From.Piece, pm.From.Square, hanging.To)
			return hanging.UCI(pm.From.Square)
		}
	}

	// 3. Even trades, by the highest-value piece that has one.
	var trade board.PieceMoves
	for _, pm := range reversed {
		if trades := cs.Trades(pm.From, pm.Moves); len(trades) > 0 {
			trade = board.PieceMoves{From: pm.From, Moves: trades}
		}
	}
	if len(trade.Moves) > 0 {
		log.Printf("policy: %s on %s trades on %s", trade.From.Piece, trade.From.Square, trade.Moves[0].To)
		return trade.Moves[0].UCI(trade.From.Square)
	}

	// 4. Challenge a bishop or knight on the flank with the rook pawn.
	for _, fp := range flankPushes {
		minors := p.Pieces[fp.minorColor][board.Bishop] | p.Pieces[fp.minorColor][board.Knight]
		if minors&board.SquareBB(fp.outpost) == 0 {
			continue
		}
		from := board.PieceOnSquare{Piece: fp.pawn, Square: fp.from}
		if legal.IsLegal(from, fp.to) {
			return fp.from.String() + fp.to.String()
		}
	}

	// 5. Scripted opening pawn moves.
	if g.stage == StageInitial {
		presets := initialMovesWhite
		if p.SideToMove == board.Black {
			presets = initialMovesBlack
		}
		if move := searchPresetMoves(legal, cs, presets); move != "" {
			return move
		}
		g.stage = StageDeveloping
	}

	// 6. Scripted development: castle early, then knights and bishops out.
	if g.stage == StageDeveloping {
		presets := developingMovesWhite
		if p.SideToMove == board.Black {
			presets = developingMovesBlack
		}
		if move := searchPresetMoves(legal, cs, presets); move != "" {
			return move
		}
		g.stage = StageMidgame
	}

	// 7. Nothing else applies: random move.
	random, ok := legal.RandomMove(g.rng)
	if !ok {
		return ""
	}
	log.Printf("policy: random move %s from %s to %s", random.From.Piece, random.From.Square, random.Moves[0].To)
	return random.Moves[0].UCI(random.From.Square)
}
