package api

import (
	"encoding/json"
)

// Типы событий матча
const (
	EventPhase      = "PHASE"
	EventDecision   = "DECISION"
	EventScore      = "SCORE"
	EventViolation  = "VIOLATION"
	EventRelocation = "RELOCATION"
	EventError      = "ERROR" // ответ монитору на отклоненную команду
)

// --- СУДЬЯ -> МОНИТОР ---

// MatchEvent это корневой объект, который судья отправляет мониторам.
// Одно событие - одно изменение: смена фазы, решение, счет, нарушение или перестановка.
type MatchEvent struct {
	// ID уникальный идентификатор события (UUID).
	ID string `json:"id"`

	// MatchID идентификатор матча.
	MatchID string `json:"matchId"`

	// Type тип события: PHASE, DECISION, SCORE, VIOLATION, RELOCATION, ERROR.
	Type string `json:"type"`

	// Tick номер тика физики, на котором принято решение.
	Tick int `json:"tick"`

	// Time игровое время, сек.
	Time float64 `json:"time"`

	// Phase фаза матча после этого тика.
	Phase string `json:"phase"`

	// Label режим игры в формате монитора ("KickOff_Left", "GameOver").
	// Заполняется, только если включен LabelMessages.
	Label string `json:"label,omitempty"`

	Decision   *DecisionView   `json:"decision,omitempty"`
	Violation  *ViolationView  `json:"violation,omitempty"`
	Score      *ScoreView      `json:"score,omitempty"`
	Relocation *RelocationView `json:"relocation,omitempty"`

	// Message текст ошибки для EventError.
	Message string `json:"message,omitempty"`
}

// Vec точка на поле, метры.
type Vec struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z,omitempty"`
}

// PlayerRef ссылка на игрока: команда + номер.
type PlayerRef struct {
	Team string `json:"team"` // Left, Right
	Unum int    `json:"unum"`
}

// DecisionView это DTO для решения судьи.
// Каждое решение несет тип, позицию, команду и длительность паузы.
type DecisionView struct {
	Kind  string  `json:"kind"`
	Pos   Vec     `json:"pos"`
	Team  string  `json:"team"`
	Pause float64 `json:"pause"`
	Cause string  `json:"cause,omitempty"` // нарушение, вызвавшее стандарт
}

// ViolationView это DTO для нарушения правил.
type ViolationView struct {
	Kind     string     `json:"kind"`
	Player   PlayerRef  `json:"player"`
	Victim   *PlayerRef `json:"victim,omitempty"`
	Pos      Vec        `json:"pos"`
	Involved int        `json:"involved,omitempty"`
	Limit    float64    `json:"limit,omitempty"`
	// Decision решение, к которому привело нарушение (если привело).
	Decision string `json:"decision,omitempty"`
}

// ScoreView текущий счет.
type ScoreView struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// RelocationView запрос физике переставить игрока.
type RelocationView struct {
	Player PlayerRef `json:"player"`
	Pos    Vec       `json:"pos"`
	Yaw    float64   `json:"yaw"`
	Reason string    `json:"reason"`
}

// --- МОНИТОР -> СУДЬЯ ---

// TrainerCommand это корневой объект для команд тренера (парсер команд монитора).
type TrainerCommand struct {
	// Action название команды: KICKOFF, RESTART, DROPBALL, BEAM, ABORT.
	Action string `json:"action"`

	// Payload JSON-объект с данными команды. Его структура зависит от Action.
	Payload json.RawMessage `json:"payload"`
}

// --- Payloads ---

// KickOffPayload используется для KICKOFF. Пустая сторона - по правилам матча.
type KickOffPayload struct {
	Side string `json:"side,omitempty"`
}

// RestartPayload используется для RESTART: назначить стандарт вручную.
type RestartPayload struct {
	Kind string  `json:"kind"` // FREE_KICK, GOAL_KICK, THROW_IN, CORNER_KICK
	Side string  `json:"side"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// DropBallPayload используется для DROPBALL. Без координат - там, где мяч.
type DropBallPayload struct {
	X *float64 `json:"x,omitempty"`
	Y *float64 `json:"y,omitempty"`
}

// BeamPayload используется для BEAM: переставить игрока.
type BeamPayload struct {
	Team string  `json:"team"`
	Unum int     `json:"unum"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Yaw  float64 `json:"yaw"`
}

// --- ФИЗИКА -> СУДЬЯ ---

// PhysicsFrame кадр физики за один тик: разрешенные позиции, скорости и контакты.
type PhysicsFrame struct {
	Tick    int               `json:"tick"`
	Time    float64           `json:"time"`
	Ball    BallFrameView     `json:"ball"`
	Players []PlayerFrameView `json:"players"`

	Contacts     []ContactView `json:"contacts,omitempty"`
	BallContacts []PlayerRef   `json:"ballContacts,omitempty"`
	GoalContacts []string      `json:"goalContacts,omitempty"` // Left / Right - чьи ворота
}

// BallFrameView мяч в кадре физики.
type BallFrameView struct {
	Pos Vec `json:"pos"`
	Vel Vec `json:"vel"`
}

// PlayerFrameView игрок в кадре физики.
type PlayerFrameView struct {
	Team      string  `json:"team"`
	Unum      int     `json:"unum"`
	Goalie    bool    `json:"goalie,omitempty"`
	RobotType int     `json:"robotType,omitempty"`
	Pos       Vec     `json:"pos"`
	Vel       Vec     `json:"vel"`
	Yaw       float64 `json:"yaw"`
	Posture   string  `json:"posture"` // standing, not_standing, on_ground
}

// ContactView контакт двух игроков.
type ContactView struct {
	A PlayerRef `json:"a"`
	B PlayerRef `json:"b"`
}
