// Package lichess adapts the engine to the Lichess bot API: an event
// stream for challenges, a per-game state stream, and move submission.
package lichess

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Event is one line of the account event stream.
type Event struct {
	Type      string    `json:"type"`
	Challenge Challenge `json:"challenge"`
	Game      GameInfo  `json:"game"`
}

// Challenge describes an incoming challenge.
type Challenge struct {
	ID         string `json:"id"`
	Challenger struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"challenger"`
	Variant struct {
		Key string `json:"key"`
	} `json:"variant"`
	TimeControl struct {
		Type      string `json:"type"`
		Limit     int    `json:"limit"`
		Increment int    `json:"increment"`
	} `json:"timeControl"`
}

// GameInfo identifies a game in start and finish events. Color is the
// side this account plays, as reported by gameStart.
type GameInfo struct {
	ID    string `json:"id"`
	Color string `json:"color"`
}

// GameEvent is one line of a game stream. gameFull lines carry the player
// ids and the initial FEN with the first state embedded; gameState lines
// carry only the evolving state.
type GameEvent struct {
	Type       string    `json:"type"`
	ID         string    `json:"id"`
	White      Player    `json:"white"`
	Black      Player    `json:"black"`
	InitialFen string    `json:"initialFen"`
	State      GameState `json:"state"`

	// gameState fields, flattened on the event itself.
	Moves  string `json:"moves"`
	Status string `json:"status"`

	// chatLine fields.
	Username string `json:"username"`
	Text     string `json:"text"`
}

// Player identifies one side of a game.
type Player struct {
	ID string `json:"id"`
}

// GameState is the embedded state of a gameFull event.
type GameState struct {
	Moves  string `json:"moves"`
	Status string `json:"status"`
}

// Client talks to the Lichess API with a bearer token. Calls use a short
// timeout; streams use a separate client that never times out.
type Client struct {
	baseURL string
	token   string
	call    *http.Client
	stream  *http.Client
}

// NewClient returns a client for the given API base URL and token.
func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		call:    &http.Client{Timeout: 10 * time.Second},
		stream:  &http.Client{},
	}
}

func (c *Client) newRequest(ctx context.Context, method, path string) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	return req, nil
}

// post issues a body-less POST and fails on a non-2xx status.
func (c *Client) post(ctx context.Context, path string) error {
	req, err := c.newRequest(ctx, http.MethodPost, path)
	if err != nil {
		return err
	}

	resp, err := c.call.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("POST %s: status %s", path, resp.Status)
	}
	return nil
}

// streamLines opens an ND-JSON stream and calls handle for every non-empty
// line until the stream ends or the context is cancelled.
func (c *Client) streamLines(ctx context.Context, path string, handle func([]byte) error) error {
	req, err := c.newRequest(ctx, http.MethodGet, path)
	if err != nil {
		return err
	}

	resp, err := c.stream.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %s", path, resp.Status)
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue // Keep-alive newline
		}
		if err := handle(line); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// StreamEvents consumes the account event stream.
func (c *Client) StreamEvents(ctx context.Context, handle func(Event) error) error {
	return c.streamLines(ctx, "/api/stream/event", func(line []byte) error {
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("decode event: %w", err)
		}
		return handle(ev)
	})
}

// StreamGame consumes the state stream of one game.
func (c *Client) StreamGame(ctx context.Context, gameID string, handle func(GameEvent) error) error {
	return c.streamLines(ctx, "/api/bot/game/stream/"+gameID, func(line []byte) error {
		var ev GameEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			return fmt.Errorf("decode game event: %w", err)
		}
		return handle(ev)
	})
}

// AcceptChallenge accepts the challenge.
func (c *Client) AcceptChallenge(ctx context.Context, id string) error {
	return c.post(ctx, "/api/challenge/"+id+"/accept")
}

// DeclineChallenge declines the challenge with a reason keyword.
func (c *Client) DeclineChallenge(ctx context.Context, id, reason string) error {
	return c.post(ctx, "/api/challenge/"+id+"/decline?reason="+url.QueryEscape(reason))
}

// MakeMove submits a UCI move in the game.
func (c *Client) MakeMove(ctx context.Context, gameID, uci string) error {
	return c.post(ctx, "/api/bot/game/"+gameID+"/move/"+uci)
}
