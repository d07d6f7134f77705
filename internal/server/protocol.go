package server

// JSON message shapes for the websocket gateway. The gateway only transports
// engine state and decisions; all rendering belongs to the client.

// --- server → client ---

// ServerMessage is the envelope for all server-to-client messages.
type ServerMessage struct {
	Type string `json:"type"`

	// For "joined"
	Seat string `json:"seat,omitempty"`

	// For "event"
	Event *EventView `json:"event,omitempty"`

	// For "log"
	Log []LogView `json:"log,omitempty"`

	// For "narration"
	Player string `json:"player,omitempty"`
	Text   string `json:"text,omitempty"`

	// For "state"
	State *StateView `json:"state,omitempty"`

	// For "result"
	Result *ResultView `json:"result,omitempty"`

	// For "prompt"
	Prompt *PromptView `json:"prompt,omitempty"`

	// For "game_over"
	Winner string `json:"winner,omitempty"`

	// For "error"
	Error string `json:"error,omitempty"`
}

// EventView mirrors one engine bus event.
type EventView struct {
	Name   string         `json:"name"`
	Player string         `json:"player,omitempty"`
	Target string         `json:"target,omitempty"`
	Cards  []string       `json:"cards,omitempty"`
	Amount int            `json:"amount,omitempty"`
	Before int            `json:"before,omitempty"`
	After  int            `json:"after,omitempty"`
	Text   string         `json:"text,omitempty"`
	Detail map[string]any `json:"detail,omitempty"`
}

// LogView mirrors one game-log entry.
type LogView struct {
	Time    string         `json:"time"`
	Type    string         `json:"kind"`
	Message string         `json:"message"`
	Detail  map[string]any `json:"detail,omitempty"`
}

// ResultView acknowledges an operation request.
type ResultView struct {
	Op     string `json:"op"`
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Card   string `json:"card,omitempty"`
	Effect string `json:"effect,omitempty"`
}

// PromptView asks the seated player for a negotiation decision.
type PromptView struct {
	ID              string             `json:"id"`
	Boss            string             `json:"boss"`
	Attacker        string             `json:"attacker"`
	Modo            string             `json:"modo"` // attacco, difesa, stoppastella
	Requirement     int                `json:"requirement"`
	AttackerStars   int                `json:"attacker_stars"`
	LastStep        int                `json:"last_step,omitempty"`
	CanStoppastella bool               `json:"can_stoppastella,omitempty"`
	Options         []PromptOptionView `json:"options"`
}

// PromptOptionView is one selectable negotiation move.
type PromptOptionView struct {
	Index  int    `json:"index"`
	Card   string `json:"card"`
	Step   int    `json:"step,omitempty"`
	Stoppa bool   `json:"stoppa,omitempty"`
}

// StateView is the whole session from one seat's perspective; other hands
// are counts only.
type StateView struct {
	SessionID      string       `json:"session_id"`
	Turn           int          `json:"turn"`
	Phase          string       `json:"phase"`
	CurrentPlayer  string       `json:"current_player"`
	ActionsTaken   int          `json:"actions_taken"`
	ActionsPerTurn int          `json:"actions_per_turn"`
	Players        []PlayerView `json:"players"`
	BossQueue      []BossView   `json:"boss_queue"`
	Limbo          []string     `json:"limbo"`
	DiscardCount   int          `json:"discard_count"`
	ResourceDeck   int          `json:"resource_deck"`
	SummonDeck     int          `json:"summon_deck"`
}

// PlayerView shows one seat.
type PlayerView struct {
	Name      string   `json:"name"`
	Human     bool     `json:"human"`
	Seal      string   `json:"seal"`
	Stars     int      `json:"stars"`
	HandCount int      `json:"hand_count"`
	Hand      []string `json:"hand,omitempty"` // only for the viewing seat
	Circle    []string `json:"circle"`
	Conquered []string `json:"conquered"`
}

// BossView shows one boss in the queue.
type BossView struct {
	Name        string `json:"name"`
	Stars       int    `json:"stars"`
	Seen        bool   `json:"seen"`
	Requirement int    `json:"requirement"` // for the viewing seat's seal
}

// --- client → server ---

// ClientMessage is the envelope for all client-to-server messages.
type ClientMessage struct {
	Type string `json:"type"` // join, start, op, shift

	// For "join"
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`

	// For "start"
	Bots int `json:"bots,omitempty"`

	// For "op"
	Op       string `json:"op,omitempty"`
	Kind     string `json:"kind,omitempty"`
	Consumed bool   `json:"consumed,omitempty"`
	Index    int    `json:"index,omitempty"`
	Indices  []int  `json:"indices,omitempty"`

	// For "shift"
	PromptID string `json:"prompt_id,omitempty"`
	Option   int    `json:"option,omitempty"`
	Decline  bool   `json:"decline,omitempty"`
}
