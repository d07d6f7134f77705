package game

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cerchia/cerchia-server-go/internal/game/rules"
	"github.com/cerchia/cerchia-server-go/internal/game/tribute"
)

// Config carries the tunable policy of a session. Zero values fall back to
// the standard rules.
type Config struct {
	ActionsPerTurn   int
	HandSize         int
	LogCap           int
	BotDelay         time.Duration
	DefenderWithhold float64 // chance a bot defender withholds a useful Stoppastella; <0 disables
	Seed             int64   // 0 = time-seeded
}

func (c Config) withDefaults() Config {
	if c.ActionsPerTurn <= 0 {
		c.ActionsPerTurn = 2
	}
	if c.HandSize <= 0 {
		c.HandSize = 3
	}
	if c.LogCap <= 0 {
		c.LogCap = rules.DefaultLogCap
	}
	if c.DefenderWithhold == 0 {
		c.DefenderWithhold = 0.10
	}
	if c.DefenderWithhold < 0 {
		c.DefenderWithhold = 0
	}
	if c.Seed == 0 {
		c.Seed = time.Now().UnixNano()
	}
	return c
}

// Seat describes one player joining a session. Human seats must provide the
// Agent that relays decisions to the player; bot seats may leave it nil and
// get the built-in bot.
type Seat struct {
	Name  string
	Human bool
	Agent Agent
}

// Session owns the entire state of one game run. It is single-threaded by
// contract: all mutation happens on one logical goroutine, and the action
// reservation in the controller is the only concurrency control. Sessions are
// discarded wholesale on restart; nothing is persisted.
type Session struct {
	ID  string
	cfg Config

	players []*Player
	current int
	turn    int

	actions *rules.ActionController
	bus     *rules.Bus
	gameLog *rules.GameLog
	logger  *zap.Logger
	rng     *rand.Rand

	resourceDeck *Deck
	summonDeck   *Deck
	bossQueue    []*Card

	limbo       []*Card
	discardPile []*Card
	graveyard   []*Card

	// Narrator is the fire-and-forget narration callback consumed by the
	// presentation layer. May be nil.
	Narrator func(playerName, text string)

	seats []Seat // retained for Restart
}

// NewSession builds decks, shuffles them, assigns a unique seal per player
// and deals the initial hands.
func NewSession(cfg Config, seats []Seat, logger *zap.Logger) (*Session, error) {
	if len(seats) < 2 {
		return nil, fmt.Errorf("need at least 2 players, got %d", len(seats))
	}
	if len(seats) > len(sealOrder) {
		return nil, fmt.Errorf("at most %d players supported, got %d", len(sealOrder), len(seats))
	}

	cfg = cfg.withDefaults()
	rng := rand.New(rand.NewSource(cfg.Seed))

	s := &Session{
		ID:      uuid.NewString(),
		cfg:     cfg,
		turn:    1,
		actions: rules.NewActionController(cfg.ActionsPerTurn),
		bus:     rules.NewBus(),
		gameLog: rules.NewGameLog(cfg.LogCap),
		logger:  logger,
		rng:     rng,
		seats:   seats,
	}

	for _, seat := range seats {
		agent := seat.Agent
		if agent == nil {
			agent = NewBotAgent(rng, cfg.BotDelay, cfg.DefenderWithhold)
		}
		s.players = append(s.players, &Player{
			Name:  seat.Name,
			Human: seat.Human,
			Agent: agent,
		})
	}

	s.resourceDeck = NewDeck(DefaultResourceSet(), rng)
	s.resourceDeck.Shuffle()
	s.summonDeck = NewDeck(DefaultSummonSet(), rng)
	s.summonDeck.Shuffle()

	bossDeck := NewDeck(DefaultBossSet(), rng)
	bossDeck.Shuffle()
	for c := bossDeck.Draw(); c != nil; c = bossDeck.Draw() {
		s.bossQueue = append(s.bossQueue, c)
	}

	seals := Seals()
	rng.Shuffle(len(seals), func(i, j int) { seals[i], seals[j] = seals[j], seals[i] })
	for i, p := range s.players {
		p.Seal = seals[i]
	}

	s.dealInitialHands()

	if s.logger != nil {
		s.logger.Info("session created",
			zap.String("session_id", s.ID),
			zap.Int("players", len(s.players)),
			zap.Int64("seed", cfg.Seed),
		)
	}
	return s, nil
}

// dealInitialHands gives each player their starting resource cards.
// Imprevisto cards are not resolved before the game starts; they go back
// under the deck and the deal continues.
func (s *Session) dealInitialHands() {
	for _, p := range s.players {
		for len(p.Hand) < s.cfg.HandSize {
			c := s.resourceDeck.Draw()
			if c == nil {
				return
			}
			if c.Kind == KindImprevisto {
				s.resourceDeck.InsertBottom(c)
				continue
			}
			p.Hand = append(p.Hand, c)
		}
	}
}

// Restart discards this session and builds a fresh one with the same seats
// and configuration but a new shuffle.
func (s *Session) Restart() (*Session, error) {
	cfg := s.cfg
	cfg.Seed = 0 // reseed
	next, err := NewSession(cfg, s.seats, s.logger)
	if err != nil {
		return nil, err
	}
	next.Narrator = s.Narrator
	return next, nil
}

// --- accessors ---

func (s *Session) Config() Config         { return s.cfg }
func (s *Session) Players() []*Player     { return s.players }
func (s *Session) CurrentIndex() int      { return s.current }
func (s *Session) CurrentPlayer() *Player { return s.players[s.current] }
func (s *Session) Turn() int              { return s.turn }
func (s *Session) Bus() *rules.Bus        { return s.bus }
func (s *Session) Log() *rules.GameLog    { return s.gameLog }
func (s *Session) Phase() rules.Phase     { return s.actions.Phase() }
func (s *Session) ActionsTaken() int      { return s.actions.Taken() }
func (s *Session) ResourceDeck() *Deck    { return s.resourceDeck }
func (s *Session) SummonDeck() *Deck      { return s.summonDeck }
func (s *Session) BossQueue() []*Card     { return s.bossQueue }
func (s *Session) Limbo() []*Card         { return s.limbo }
func (s *Session) DiscardPile() []*Card   { return s.discardPile }
func (s *Session) Graveyard() []*Card     { return s.graveyard }

// PlayerByName returns the named player, or nil.
func (s *Session) PlayerByName(name string) *Player {
	for _, p := range s.players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// --- action gate ---

// RequestAction reserves an action slot of the given kind for the current
// player.
func (s *Session) RequestAction(kind string) OpResult {
	if err := s.actions.Request(kind); err != nil {
		s.narrate(s.CurrentPlayer().Name, fmt.Sprintf("azione %q rifiutata: %s", kind, err))
		return failure(err.Error())
	}
	s.publish(rules.Event{
		Name:   rules.EventFase,
		Player: s.CurrentPlayer().Name,
		Text:   rules.PhaseActionInProgress.String(),
		Detail: map[string]any{"kind": kind},
	})
	return success()
}

// CompleteAction releases the reservation. When consumed is true the action
// is charged against this turn's budget.
func (s *Session) CompleteAction(consumed bool) {
	kind := s.actions.Complete(consumed)
	name := rules.EventAzioneAnnullata
	if consumed {
		name = rules.EventAzioneConsumata
	}
	s.publish(rules.Event{
		Name:   name,
		Player: s.CurrentPlayer().Name,
		Amount: s.actions.Taken(),
		Detail: map[string]any{"kind": kind},
	})
	s.publish(rules.Event{
		Name:   rules.EventFase,
		Player: s.CurrentPlayer().Name,
		Text:   rules.PhaseTurn.String(),
	})
}

// AdvanceTurn rotates to the next player, resets the action budget and the
// incoming player's per-turn flags, and clears any pending reservation.
func (s *Session) AdvanceTurn() {
	s.current = (s.current + 1) % len(s.players)
	s.turn++
	s.actions.Reset()
	next := s.CurrentPlayer()
	next.ResetTurnFlags()
	s.narrate(next.Name, "inizia il turno")
	s.publish(rules.Event{
		Name:   rules.EventFase,
		Player: next.Name,
		Amount: s.turn,
		Text:   rules.PhaseTurn.String(),
	})
}

// --- draws ---

// DrawResourceCard draws from the supply deck. A plain resource goes to the
// player's hand; an imprevisto resolves immediately and ends in the
// graveyard. Returns nil when the deck is empty.
func (s *Session) DrawResourceCard(p *Player) *Card {
	c := s.resourceDeck.Draw()
	if c == nil {
		s.narrate(p.Name, "il mazzo rifornimenti è esaurito")
		return nil
	}
	if c.Kind == KindImprevisto {
		s.narrate(p.Name, fmt.Sprintf("pesca l'imprevisto %s", c.Name))
		outcome := s.ResolveEvent(c, p)
		s.graveyard = append(s.graveyard, c)
		s.logEvent("imprevisto", fmt.Sprintf("%s: %s", c.Name, outcome.Effect), map[string]any{
			"player": p.Name,
			"card":   c.Name,
			"effect": outcome.Effect,
		})
		return c
	}

	p.Hand = append(p.Hand, c)
	s.narrate(p.Name, fmt.Sprintf("pesca %s", c.Name))
	s.publish(rules.Event{
		Name:   rules.EventPescaRifornimento,
		Player: p.Name,
		Cards:  []string{c.Name},
		Amount: s.resourceDeck.Size(),
	})
	s.publishHandChanged(p)
	return c
}

// DrawSummonCard draws from the summon deck. A demon is revealed into limbo
// until paid for; an artifact goes to the hand. Returns nil when empty.
func (s *Session) DrawSummonCard(p *Player) *Card {
	c := s.summonDeck.Draw()
	if c == nil {
		s.narrate(p.Name, "il mazzo evocazioni è esaurito")
		return nil
	}
	switch c.Kind {
	case KindDemon:
		s.narrate(p.Name, fmt.Sprintf("rivela %s nel limbo", c.Name))
		s.SendToLimbo(c)
	default:
		p.Hand = append(p.Hand, c)
		s.narrate(p.Name, fmt.Sprintf("ottiene %s", c.Name))
		s.publishHandChanged(p)
	}
	return c
}

// --- summoning ---

// ComputeEffectiveCost is the demon's base cost plus any per-turn surcharge
// on the player, never negative.
func (s *Session) ComputeEffectiveCost(p *Player, demon *Card) int {
	cost := demon.BaseCost + p.ExtraSummonCost
	if cost < 0 {
		cost = 0
	}
	return cost
}

// PayForSummon resolves a payment for the given cost from the player's
// energy cards and, on success, removes exactly those cards from the hand
// and returns them. The caller is responsible for discarding them. On
// failure it returns nil and the hand is untouched.
func (s *Session) PayForSummon(p *Player, demon *Card, cost int) []*Card {
	var cands []tribute.Candidate
	for i, c := range p.Hand {
		if c.Kind != KindResource || c.Category != CategoryEnergy {
			continue
		}
		tags := make([]string, len(c.Subtypes))
		for j, t := range c.Subtypes {
			tags[j] = string(t)
		}
		cands = append(cands, tribute.Candidate{Index: i, Value: c.Value, Subtypes: tags})
	}

	res := tribute.Find(cands, cost, string(demon.CostSubtype), demon.CostSubtypeMin)
	if !res.Success {
		s.narrate(p.Name, fmt.Sprintf("non può pagare %s: %s", demon.Name, res.Reason))
		return nil
	}

	cards := make([]*Card, 0, len(res.Plan.Indices))
	for _, idx := range res.Plan.Indices {
		cards = append(cards, p.Hand[idx])
	}
	for _, c := range cards {
		p.RemoveFromHand(c)
	}
	s.publishHandChanged(p)
	return cards
}

// SendToLimbo places a revealed demon in the shared holding zone.
func (s *Session) SendToLimbo(demon *Card) {
	s.limbo = append(s.limbo, demon)
	s.logEvent("limbo", fmt.Sprintf("%s in limbo", demon.Name), map[string]any{"card": demon.Name})
}

// SummonFromLimbo pays the effective cost of the demon at the given limbo
// index and moves it into the player's circle. All-or-nothing: on any
// failure no zone changes.
func (s *Session) SummonFromLimbo(index int, p *Player) OpResult {
	if index < 0 || index >= len(s.limbo) {
		return failure(ReasonNoTarget)
	}
	if p.SummoningBlocked {
		s.narrate(p.Name, "le evocazioni sono bloccate questo turno")
		return failure(ReasonSummoningBlocked)
	}

	demon := s.limbo[index]
	cost := s.ComputeEffectiveCost(p, demon)
	payment := s.PayForSummon(p, demon, cost)
	if payment == nil {
		return failure(ReasonPaymentInsufficient)
	}
	s.Discard(nil, payment)

	s.limbo = append(s.limbo[:index], s.limbo[index+1:]...)
	p.Circle = append(p.Circle, demon)

	s.narrate(p.Name, fmt.Sprintf("evoca %s nella cerchia (costo %d)", demon.Name, cost))
	s.publish(rules.Event{
		Name:   rules.EventDemoneAggiuntoCerchia,
		Player: p.Name,
		Cards:  []string{demon.Name},
		Amount: cost,
		After:  p.TotalStars(),
	})
	return success()
}

// --- discarding ---

// Discard moves the given cards to the discard pile. When p is non-nil the
// cards are removed from that player's hand first; cards already detached
// from their zone (for example a committed payment) pass p as nil.
func (s *Session) Discard(p *Player, cards []*Card) {
	if len(cards) == 0 {
		return
	}
	names := make([]string, 0, len(cards))
	for _, c := range cards {
		if p != nil {
			p.RemoveFromHand(c)
		}
		s.discardPile = append(s.discardPile, c)
		names = append(names, c.Name)
	}
	playerName := ""
	if p != nil {
		playerName = p.Name
		s.publishHandChanged(p)
	}
	s.publish(rules.Event{
		Name:   rules.EventScartaCarte,
		Player: playerName,
		Cards:  names,
	})
	s.logEvent("scarto", fmt.Sprintf("scartate %d carte", len(cards)), map[string]any{
		"player": playerName,
		"cards":  names,
	})
}

// --- internals ---

func (s *Session) publish(evt rules.Event) {
	s.bus.Publish(evt)
}

func (s *Session) publishHandChanged(p *Player) {
	s.publish(rules.Event{
		Name:   rules.EventHandChanged,
		Player: p.Name,
		Cards:  p.HandNames(),
		Amount: len(p.Hand),
	})
}

// narrate emits the onAzione narration: callback, azione event and log entry.
func (s *Session) narrate(playerName, text string) {
	if s.Narrator != nil {
		s.Narrator(playerName, text)
	}
	s.publish(rules.Event{
		Name:   rules.EventAzione,
		Player: playerName,
		Text:   text,
	})
	s.logEvent("azione", fmt.Sprintf("%s %s", playerName, text), map[string]any{"player": playerName})
	if s.logger != nil {
		s.logger.Debug("azione", zap.String("player", playerName), zap.String("text", text))
	}
}

func (s *Session) logEvent(typ, msg string, detail map[string]any) {
	entry := s.gameLog.Append(rules.Entry{Type: typ, Message: msg, Detail: detail})
	s.publish(rules.Event{
		Name:      rules.EventLog,
		Text:      entry.Message,
		Detail:    detail,
		Timestamp: entry.Time,
	})
}
