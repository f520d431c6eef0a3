package lichess

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/hailam/chessmind/internal/board"
	"github.com/hailam/chessmind/internal/policy"
	"github.com/hailam/chessmind/internal/storage"
)

// Clock limits accepted for a challenge, in seconds.
const (
	minClockLimit = 180
	maxClockLimit = 600
)

// errGameOver stops a game stream once the game has left the started state.
var errGameOver = errors.New("game over")

// Bot plays one game at a time over the Lichess bot API, checkpointing the
// per-game policy state so a restart resumes mid-game.
type Bot struct {
	client *Client
	store  *storage.Store
	debug  bool

	mu     sync.Mutex
	active string
}

// NewBot returns a bot using the given client and game store.
func NewBot(client *Client, store *storage.Store, debug bool) *Bot {
	return &Bot{client: client, store: store, debug: debug}
}

// Run consumes the account event stream until it ends or the context is
// cancelled.
func (b *Bot) Run(ctx context.Context) error {
	log.Printf("lichess: streaming events")
	return b.client.StreamEvents(ctx, func(ev Event) error {
		b.handleEvent(ctx, ev)
		return nil
	})
}

func (b *Bot) handleEvent(ctx context.Context, ev Event) {
	switch ev.Type {
	case "challenge":
		b.handleChallenge(ctx, ev.Challenge)
	case "gameStart":
		b.handleGameStart(ctx, ev.Game)
	case "gameFinish":
		b.finishGame(ev.Game.ID)
	default:
		if b.debug {
			log.Printf("lichess: ignoring event %q", ev.Type)
		}
	}
}

// declineReason returns the reason keyword for refusing a challenge, or ""
// when the challenge is acceptable.
func (b *Bot) declineReason(ch Challenge) string {
	b.mu.Lock()
	busy := b.active != ""
	b.mu.Unlock()

	switch {
	case busy:
		return "later"
	case ch.TimeControl.Type != "clock":
		return "timeControl"
	case ch.TimeControl.Limit > maxClockLimit:
		return "tooSlow"
	case ch.TimeControl.Limit < minClockLimit:
		return "tooFast"
	case ch.Variant.Key != "standard":
		return "standard"
	case ch.Challenger.Title == "BOT":
		return "noBot"
	}
	return ""
}

func (b *Bot) handleChallenge(ctx context.Context, ch Challenge) {
	if reason := b.declineReason(ch); reason != "" {
		log.Printf("lichess: declining challenge %s from %s: %s", ch.ID, ch.Challenger.ID, reason)
		if err := b.client.DeclineChallenge(ctx, ch.ID, reason); err != nil {
			log.Printf("lichess: decline %s: %v", ch.ID, err)
		}
		return
	}

	log.Printf("lichess: accepting challenge %s from %s", ch.ID, ch.Challenger.ID)
	if err := b.client.AcceptChallenge(ctx, ch.ID); err != nil {
		log.Printf("lichess: accept %s: %v", ch.ID, err)
	}
}

func (b *Bot) handleGameStart(ctx context.Context, game GameInfo) {
	b.mu.Lock()
	if b.active != "" && b.active != game.ID {
		b.mu.Unlock()
		log.Printf("lichess: already playing %s, ignoring start of %s", b.active, game.ID)
		return
	}
	b.active = game.ID
	b.mu.Unlock()

	go func() {
		if err := b.playGame(ctx, game); err != nil {
			log.Printf("lichess: game %s stream ended: %v", game.ID, err)
		}
		b.finishGame(game.ID)
	}()
}

func (b *Bot) finishGame(id string) {
	b.mu.Lock()
	if b.active == id {
		b.active = ""
	}
	b.mu.Unlock()

	if b.store != nil {
		if err := b.store.DeleteGame(id); err != nil {
			log.Printf("lichess: drop stored game %s: %v", id, err)
		}
	}
}

// session is the local state of one game in progress.
type session struct {
	id    string
	color board.Color
	pos   *board.Position
	game  *policy.Game
	seen  int
}

func (b *Bot) playGame(ctx context.Context, game GameInfo) error {
	s := &session{
		id:   game.ID,
		game: policy.NewGame(),
	}
	if game.Color == "black" {
		s.color = board.Black
	}

	if b.store != nil {
		if rec, found, err := b.store.LoadGame(game.ID); err != nil {
			log.Printf("lichess: load stored game %s: %v", game.ID, err)
		} else if found {
			log.Printf("lichess: resuming game %s at stage %d", game.ID, rec.Stage)
			s.game.SetStage(policy.Stage(rec.Stage))
			s.game.OpponentMove(rec.LastMove)
		}
	}

	log.Printf("lichess: playing game %s as %s", game.ID, game.Color)
	err := b.client.StreamGame(ctx, game.ID, func(ev GameEvent) error {
		return b.handleGameEvent(ctx, s, ev)
	})
	if errors.Is(err, errGameOver) {
		return nil
	}
	return err
}

func (b *Bot) handleGameEvent(ctx context.Context, s *session, ev GameEvent) error {
	switch ev.Type {
	case "gameFull":
		fen := ev.InitialFen
		if fen == "" || fen == "startpos" {
			pos := board.NewPosition()
			s.pos = pos
		} else {
			pos, err := board.ParseFEN(fen)
			if err != nil {
				return err
			}
			s.pos = pos
		}
		s.seen = 0
		return b.advance(ctx, s, ev.State.Moves, ev.State.Status)

	case "gameState":
		return b.advance(ctx, s, ev.Moves, ev.Status)

	case "chatLine":
		log.Printf("lichess: chat %s: %s", ev.Username, ev.Text)
	case "opponentGone":
		log.Printf("lichess: opponent gone in game %s", s.id)
	default:
		if b.debug {
			log.Printf("lichess: ignoring game event %q", ev.Type)
		}
	}
	return nil
}

// advance replays moves the session has not seen yet and answers when it is
// the engine's turn.
func (b *Bot) advance(ctx context.Context, s *session, moves, status string) error {
	if s.pos == nil {
		return errors.New("game state before gameFull")
	}

	var list []string
	if moves != "" {
		list = strings.Fields(moves)
	}
	for ; s.seen < len(list); s.seen++ {
		uci := list[s.seen]
		mover := s.pos.SideToMove
		if err := s.pos.MakeMove(uci); err != nil {
			return err
		}
		if mover != s.color {
			s.game.OpponentMove(uci)
		}
	}

	if status != "" && status != "started" {
		log.Printf("lichess: game %s finished: %s", s.id, status)
		return errGameOver
	}

	if s.pos.SideToMove != s.color {
		return nil
	}

	move := s.game.BestMove(s.pos)
	if move == "" {
		log.Printf("lichess: no legal move in game %s", s.id)
		return nil
	}

	if err := b.client.MakeMove(ctx, s.id, move); err != nil {
		log.Printf("lichess: submit %s in game %s: %v", move, s.id, err)
		return nil
	}
	if err := s.pos.MakeMove(move); err != nil {
		return err
	}
	s.seen++

	b.checkpoint(s)
	return nil
}

func (b *Bot) checkpoint(s *session) {
	if b.store == nil {
		return
	}

	color := "white"
	if s.color == board.Black {
		color = "black"
	}
	rec := storage.GameRecord{
		FEN:      s.pos.ToFEN(),
		Stage:    int(s.game.Stage()),
		LastMove: s.game.LastMove(),
		Color:    color,
		Moves:    s.seen,
	}
	if err := b.store.SaveGame(s.id, rec); err != nil {
		log.Printf("lichess: checkpoint game %s: %v", s.id, err)
	}
}
