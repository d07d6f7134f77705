package server

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/cerchia/cerchia-server-go/internal/game"
)

type pendingPrompt struct {
	ch chan int
}

// Client is one websocket connection. Once joined it is bound to a seat and
// doubles as the game.Agent for that player: negotiation prompts travel to
// the browser and the answer (or the dropped connection) resolves them.
type Client struct {
	gw   *Gateway
	conn *websocket.Conn
	send chan ServerMessage
	name string // seat name, "" until joined

	mu        sync.Mutex
	prompts   map[string]*pendingPrompt
	closed    chan struct{}
	closeOnce sync.Once
}

func newClient(gw *Gateway, conn *websocket.Conn) *Client {
	return &Client{
		gw:      gw,
		conn:    conn,
		send:    make(chan ServerMessage, 64),
		prompts: make(map[string]*pendingPrompt),
		closed:  make(chan struct{}),
	}
}

func (c *Client) readPump() {
	defer func() {
		c.markClosed()
		c.gw.unregister(c)
		c.conn.Close()
	}()

	for {
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			return
		}
		if msg.Type == "shift" {
			// Decision answers bypass the op loop: the loop may be blocked
			// inside a conquest waiting for exactly this answer.
			c.resolvePrompt(msg)
			continue
		}
		c.gw.dispatch(c, msg)
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()
	for {
		select {
		case <-c.closed:
			return
		case msg := <-c.send:
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		}
	}
}

// enqueue queues a message, dropping it if the client is gone or cannot keep
// up. The engine may still hold a disconnected client as its decision agent,
// so enqueue must stay safe after the connection dies.
func (c *Client) enqueue(msg ServerMessage) {
	if !c.tryEnqueue(msg) {
		if c.gw.logger != nil {
			c.gw.logger.Warn("dropping message for slow client", zap.String("seat", c.name))
		}
	}
}

// tryEnqueue reports whether the message made it onto the send queue. Closed
// clients and full buffers both fail; the caller decides what that means.
func (c *Client) tryEnqueue(msg ServerMessage) bool {
	select {
	case <-c.closed:
		return false
	default:
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) markClosed() {
	c.closeOnce.Do(func() { close(c.closed) })
}

func (c *Client) resolvePrompt(msg ClientMessage) {
	c.mu.Lock()
	pending, ok := c.prompts[msg.PromptID]
	if ok {
		delete(c.prompts, msg.PromptID)
	}
	c.mu.Unlock()
	if !ok {
		return
	}
	option := msg.Option
	if msg.Decline {
		option = -1
	}
	pending.ch <- option
}

// ChooseStarShift implements game.Agent for the seated human. A cancelled
// context, a closed dialog or a dropped connection all resolve as a decline,
// never as a stuck reservation.
func (c *Client) ChooseStarShift(ctx context.Context, prompt game.ShiftPrompt) (*game.ShiftChoice, error) {
	id := uuid.NewString()
	ch := make(chan int, 1)
	c.mu.Lock()
	c.prompts[id] = &pendingPrompt{ch: ch}
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		delete(c.prompts, id)
		c.mu.Unlock()
	}()

	view := &PromptView{
		ID:              id,
		Boss:            prompt.Boss.Name,
		Attacker:        prompt.Attacker,
		Modo:            string(prompt.Mode),
		Requirement:     prompt.Requirement,
		AttackerStars:   prompt.AttackerStars,
		LastStep:        prompt.LastStep,
		CanStoppastella: prompt.CanStoppastella,
	}
	for i, o := range prompt.Options {
		view.Options = append(view.Options, PromptOptionView{
			Index:  i,
			Card:   o.Card.Name,
			Step:   o.Step,
			Stoppa: o.Stoppa,
		})
	}
	// A prompt that cannot be delivered must not leave the duel waiting on
	// an answer that will never arrive: it counts as a decline.
	if !c.tryEnqueue(ServerMessage{Type: "prompt", Prompt: view}) {
		if c.gw != nil && c.gw.logger != nil {
			c.gw.logger.Warn("prompt undeliverable, declining", zap.String("seat", c.name))
		}
		return nil, nil
	}

	select {
	case <-ctx.Done():
		return nil, nil
	case <-c.closed:
		return nil, nil
	case idx := <-ch:
		if idx < 0 || idx >= len(prompt.Options) {
			return nil, nil
		}
		o := prompt.Options[idx]
		return &game.ShiftChoice{Card: o.Card, Step: o.Step, Stoppa: o.Stoppa}, nil
	}
}
