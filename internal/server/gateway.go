package server

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cerchia/cerchia-server-go/internal/config"
	"github.com/cerchia/cerchia-server-go/internal/game"
	"github.com/cerchia/cerchia-server-go/internal/game/rules"
	"github.com/cerchia/cerchia-server-go/internal/repository"
)

// allEventNames is every bus event relayed to clients.
var allEventNames = []rules.EventName{
	rules.EventLog,
	rules.EventAzione,
	rules.EventFase,
	rules.EventPescaRifornimento,
	rules.EventHandChanged,
	rules.EventScartaCarte,
	rules.EventDemoneAggiuntoCerchia,
	rules.EventBossRuotato,
	rules.EventAzioneConsumata,
	rules.EventAzioneAnnullata,
}

type opRequest struct {
	client *Client
	msg    ClientMessage
}

// Gateway hosts one table: it upgrades websocket connections, binds joined
// clients to seats, funnels all engine operations through a single loop (the
// engine is single-threaded by contract) and relays every bus event back out.
type Gateway struct {
	logger       *zap.Logger
	cfg          config.ServerConfig
	gameCfg      game.Config
	matches      *repository.MatchRepository
	passwordHash []byte
	upgrader     websocket.Upgrader

	ops chan opRequest
	ctx context.Context

	mu        sync.RWMutex
	clients   map[*Client]bool
	joined    []*Client // seat claim order
	session   *game.Session
	unsub     []func()
	startedAt time.Time
	over      bool
}

// New creates a gateway. The table password, when configured, is held only
// as a bcrypt hash.
func New(cfg config.ServerConfig, gameCfg game.Config, matches *repository.MatchRepository, logger *zap.Logger) (*Gateway, error) {
	g := &Gateway{
		logger:  logger,
		cfg:     cfg,
		gameCfg: gameCfg,
		matches: matches,
		ops:     make(chan opRequest, 64),
		clients: make(map[*Client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	if cfg.TablePassword != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(cfg.TablePassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash table password: %w", err)
		}
		g.passwordHash = hash
	}
	return g, nil
}

// Run processes queued operations until the context ends. All engine access
// happens on this goroutine.
func (g *Gateway) Run(ctx context.Context) {
	g.ctx = ctx
	for {
		select {
		case <-ctx.Done():
			return
		case req := <-g.ops:
			g.handle(req.client, req.msg)
		}
	}
}

// Handler returns the HTTP surface: the websocket endpoint and a health
// probe.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", g.serveWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	return mux
}

func (g *Gateway) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := g.upgrader.Upgrade(w, r, nil)
	if err != nil {
		if g.logger != nil {
			g.logger.Warn("websocket upgrade failed", zap.Error(err))
		}
		return
	}
	c := newClient(g, conn)
	g.mu.Lock()
	g.clients[c] = true
	g.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

func (g *Gateway) unregister(c *Client) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.clients[c]; !ok {
		return
	}
	delete(g.clients, c)
	for i, j := range g.joined {
		if j == c {
			g.joined = append(g.joined[:i], g.joined[i+1:]...)
			break
		}
	}
}

// dispatch queues a client message for the op loop.
func (g *Gateway) dispatch(c *Client, msg ClientMessage) {
	select {
	case g.ops <- opRequest{client: c, msg: msg}:
	default:
		c.enqueue(ServerMessage{Type: "error", Error: "server busy, retry"})
	}
}

func (g *Gateway) broadcast(msg ServerMessage) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for c := range g.clients {
		c.enqueue(msg)
	}
}

func (g *Gateway) broadcastEvent(evt rules.Event) {
	g.broadcast(ServerMessage{Type: "event", Event: &EventView{
		Name:   string(evt.Name),
		Player: evt.Player,
		Target: evt.Target,
		Cards:  evt.Cards,
		Amount: evt.Amount,
		Before: evt.Before,
		After:  evt.After,
		Text:   evt.Text,
		Detail: evt.Detail,
	}})
}

// --- message handling (op loop only) ---

func (g *Gateway) handle(c *Client, msg ClientMessage) {
	switch msg.Type {
	case "join":
		g.handleJoin(c, msg)
	case "start":
		g.handleStart(c, msg)
	case "op":
		g.handleOp(c, msg)
	default:
		c.enqueue(ServerMessage{Type: "error", Error: fmt.Sprintf("unknown message type %q", msg.Type)})
	}
}

func (g *Gateway) handleJoin(c *Client, msg ClientMessage) {
	if g.passwordHash != nil {
		if bcrypt.CompareHashAndPassword(g.passwordHash, []byte(msg.Password)) != nil {
			c.enqueue(ServerMessage{Type: "error", Error: "wrong table password"})
			return
		}
	}
	if msg.Name == "" {
		c.enqueue(ServerMessage{Type: "error", Error: "a seat name is required"})
		return
	}
	g.mu.Lock()
	for other := range g.clients {
		if other != c && other.name == msg.Name {
			g.mu.Unlock()
			c.enqueue(ServerMessage{Type: "error", Error: fmt.Sprintf("seat %q is taken", msg.Name)})
			return
		}
	}
	c.name = msg.Name
	g.joined = append(g.joined, c)
	g.mu.Unlock()

	// Rejoining an existing seat re-binds the decision agent to the new
	// connection.
	if g.session != nil {
		if p := g.session.PlayerByName(msg.Name); p != nil && p.Human {
			p.Agent = c
		}
	}

	c.enqueue(ServerMessage{Type: "joined", Seat: msg.Name})
	if g.logger != nil {
		g.logger.Info("seat joined", zap.String("seat", msg.Name))
	}
}

func (g *Gateway) handleStart(c *Client, msg ClientMessage) {
	if c.name == "" {
		c.enqueue(ServerMessage{Type: "error", Error: "join before starting"})
		return
	}
	if g.session != nil {
		c.enqueue(ServerMessage{Type: "error", Error: "game already started; use restart"})
		return
	}

	var seats []game.Seat
	g.mu.RLock()
	for _, joined := range g.joined {
		seats = append(seats, game.Seat{Name: joined.name, Human: true, Agent: joined})
	}
	g.mu.RUnlock()
	for i := 0; i < msg.Bots; i++ {
		seats = append(seats, game.Seat{Name: fmt.Sprintf("Bot %d", i+1)})
	}

	session, err := game.NewSession(g.gameCfg, seats, g.logger)
	if err != nil {
		c.enqueue(ServerMessage{Type: "error", Error: err.Error()})
		return
	}
	g.installSession(session)
	g.broadcastState()
}

func (g *Gateway) installSession(session *game.Session) {
	for _, u := range g.unsub {
		u()
	}
	g.unsub = nil
	g.session = session
	g.startedAt = time.Now()
	g.over = false

	for _, name := range allEventNames {
		g.unsub = append(g.unsub, session.Bus().Subscribe(name, g.broadcastEvent))
	}
	session.Narrator = func(player, text string) {
		g.broadcast(ServerMessage{Type: "narration", Player: player, Text: text})
	}
}

// currentPlayerOps are the ops only the player whose turn it is may invoke.
var currentPlayerOps = map[string]bool{
	"request_action":   true,
	"complete_action":  true,
	"draw_resource":    true,
	"draw_summon":      true,
	"summon":           true,
	"attempt_conquest": true,
	"play_magic":       true,
	"discard":          true,
	"advance_turn":     true,
}

func (g *Gateway) handleOp(c *Client, msg ClientMessage) {
	if g.session == nil {
		c.enqueue(ServerMessage{Type: "error", Error: "no game in progress"})
		return
	}
	p := g.session.PlayerByName(c.name)
	if p == nil {
		c.enqueue(ServerMessage{Type: "error", Error: "not seated in this game"})
		return
	}
	if currentPlayerOps[msg.Op] && p != g.session.CurrentPlayer() {
		c.enqueue(ServerMessage{Type: "error", Error: "not your turn"})
		return
	}

	res := ResultView{Op: msg.Op}
	switch msg.Op {
	case "request_action":
		r := g.session.RequestAction(msg.Kind)
		res.OK, res.Reason = r.OK, r.Reason

	case "complete_action":
		g.session.CompleteAction(msg.Consumed)
		res.OK = true

	case "draw_resource":
		if card := g.session.DrawResourceCard(p); card != nil {
			res.OK, res.Card = true, card.Name
		} else {
			res.Reason = game.ReasonNoTarget
		}

	case "draw_summon":
		if card := g.session.DrawSummonCard(p); card != nil {
			res.OK, res.Card = true, card.Name
		} else {
			res.Reason = game.ReasonNoTarget
		}

	case "summon":
		r := g.session.SummonFromLimbo(msg.Index, p)
		res.OK, res.Reason = r.OK, r.Reason

	case "attempt_conquest":
		res.OK = g.session.AttemptConquest(g.ctx, nil)
		g.checkGameOver()

	case "play_magic":
		if msg.Index < 0 || msg.Index >= len(p.Hand) {
			res.Reason = game.ReasonNoTarget
			break
		}
		card := p.Hand[msg.Index]
		r := g.session.PlayMagic(p, card)
		res.OK, res.Effect, res.Reason = r.OK, r.Effect, r.Reason
		res.Card = card.Name

	case "discard":
		cards := make([]*game.Card, 0, len(msg.Indices))
		for _, idx := range msg.Indices {
			if idx < 0 || idx >= len(p.Hand) {
				res.Reason = game.ReasonNoTarget
				break
			}
			cards = append(cards, p.Hand[idx])
		}
		if res.Reason == "" {
			g.session.Discard(p, cards)
			res.OK = true
		}

	case "advance_turn":
		g.session.AdvanceTurn()
		res.OK = true
		g.runBots()

	case "restart":
		next, err := g.session.Restart()
		if err != nil {
			res.Reason = err.Error()
			break
		}
		g.installSession(next)
		res.OK = true
		g.broadcast(ServerMessage{Type: "restarted"})
		g.broadcastState()

	case "state":
		c.enqueue(ServerMessage{Type: "state", State: g.stateViewFor(c.name)})
		return

	case "log":
		entries := g.session.Log().Entries()
		views := make([]LogView, 0, len(entries))
		for _, e := range entries {
			views = append(views, LogView{
				Time:    e.Time.Format(time.RFC3339),
				Type:    e.Type,
				Message: e.Message,
				Detail:  e.Detail,
			})
		}
		c.enqueue(ServerMessage{Type: "log", Log: views})
		return

	default:
		c.enqueue(ServerMessage{Type: "error", Error: fmt.Sprintf("unknown op %q", msg.Op)})
		return
	}

	c.enqueue(ServerMessage{Type: "result", Result: &res})
	g.broadcastState()
}

// runBots plays out consecutive bot turns until the turn lands on a human
// seat or the game ends. Bounded by the table size since every started game
// has at least one human seat.
func (g *Gateway) runBots() {
	for i := 0; i < len(g.session.Players()); i++ {
		if g.over || g.session.CurrentPlayer().Human {
			return
		}
		g.session.PlayBotTurn(g.ctx)
		g.checkGameOver()
		g.broadcastState()
	}
}

// checkGameOver ends the game when the boss queue is exhausted: most
// conquered bosses wins, star total breaks ties.
func (g *Gateway) checkGameOver() {
	if g.over || len(g.session.BossQueue()) > 0 {
		return
	}
	g.over = true

	var winner *game.Player
	for _, p := range g.session.Players() {
		if winner == nil ||
			len(p.ConqueredBosses) > len(winner.ConqueredBosses) ||
			(len(p.ConqueredBosses) == len(winner.ConqueredBosses) && p.TotalStars() > winner.TotalStars()) {
			winner = p
		}
	}
	g.broadcast(ServerMessage{Type: "game_over", Winner: winner.Name})
	if g.logger != nil {
		g.logger.Info("game over", zap.String("winner", winner.Name), zap.Int("turns", g.session.Turn()))
	}
	g.saveMatch(winner)
}

func (g *Gateway) saveMatch(winner *game.Player) {
	if g.matches == nil {
		return
	}
	result := repository.MatchResult{
		SessionID: g.session.ID,
		Winner:    winner.Name,
		Turns:     g.session.Turn(),
		Conquests: make(map[string]int),
		StartedAt: g.startedAt,
		EndedAt:   time.Now(),
	}
	for _, p := range g.session.Players() {
		result.Players = append(result.Players, p.Name)
		result.Conquests[p.Name] = len(p.ConqueredBosses)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := g.matches.SaveMatch(ctx, result); err != nil && g.logger != nil {
		g.logger.Error("failed to save match", zap.Error(err))
	}
}

func (g *Gateway) broadcastState() {
	g.mu.RLock()
	clients := make([]*Client, 0, len(g.clients))
	for c := range g.clients {
		clients = append(clients, c)
	}
	g.mu.RUnlock()
	for _, c := range clients {
		c.enqueue(ServerMessage{Type: "state", State: g.stateViewFor(c.name)})
	}
}

func (g *Gateway) stateViewFor(seat string) *StateView {
	s := g.session
	if s == nil {
		return nil
	}
	viewer := s.PlayerByName(seat)

	view := &StateView{
		SessionID:      s.ID,
		Turn:           s.Turn(),
		Phase:          s.Phase().String(),
		CurrentPlayer:  s.CurrentPlayer().Name,
		ActionsTaken:   s.ActionsTaken(),
		ActionsPerTurn: s.Config().ActionsPerTurn,
		DiscardCount:   len(s.DiscardPile()),
		ResourceDeck:   s.ResourceDeck().Size(),
		SummonDeck:     s.SummonDeck().Size(),
	}
	for _, d := range s.Limbo() {
		view.Limbo = append(view.Limbo, d.Name)
	}
	for _, p := range s.Players() {
		pv := PlayerView{
			Name:      p.Name,
			Human:     p.Human,
			Seal:      string(p.Seal),
			Stars:     p.TotalStars(),
			HandCount: len(p.Hand),
		}
		if p == viewer {
			pv.Hand = p.HandNames()
		}
		for _, d := range p.Circle {
			pv.Circle = append(pv.Circle, d.Name)
		}
		for _, b := range p.ConqueredBosses {
			pv.Conquered = append(pv.Conquered, b.Name)
		}
		view.Players = append(view.Players, pv)
	}
	for _, b := range s.BossQueue() {
		bv := BossView{Name: b.Name, Stars: b.Stars, Seen: b.Seen}
		if viewer != nil && viewer.Seal != "" {
			bv.Requirement = b.RequirementFor(viewer.Seal)
		}
		view.BossQueue = append(view.BossQueue, bv)
	}
	return view
}
