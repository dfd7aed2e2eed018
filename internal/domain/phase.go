package domain

import "strings"

// Phase - фаза матча. В каждый момент активна ровно одна.
type Phase uint8

const (
	PhasePreKickOff Phase = iota
	PhasePlaying
	PhasePaused
	PhaseHalfTime
	PhaseFullTime
	PhasePenaltyShootout
	PhaseAborted
)

var phaseStringToValue = map[string]Phase{
	"PRE_KICK_OFF":     PhasePreKickOff,
	"PLAYING":          PhasePlaying,
	"PAUSED":           PhasePaused,
	"HALF_TIME":        PhaseHalfTime,
	"FULL_TIME":        PhaseFullTime,
	"PENALTY_SHOOTOUT": PhasePenaltyShootout,
	"ABORTED":          PhaseAborted,
}

var phaseValueToString = map[Phase]string{
	PhasePreKickOff:      "PRE_KICK_OFF",
	PhasePlaying:         "PLAYING",
	PhasePaused:          "PAUSED",
	PhaseHalfTime:        "HALF_TIME",
	PhaseFullTime:        "FULL_TIME",
	PhasePenaltyShootout: "PENALTY_SHOOTOUT",
	PhaseAborted:         "ABORTED",
}

// AllPhases перечисление всех фаз (для таблицы переходов и тестов).
var AllPhases = []Phase{
	PhasePreKickOff, PhasePlaying, PhasePaused, PhaseHalfTime,
	PhaseFullTime, PhasePenaltyShootout, PhaseAborted,
}

// ParsePhase конвертирует строку в Phase. ok=false для неизвестных строк.
func ParsePhase(s string) (Phase, bool) {
	val, ok := phaseStringToValue[strings.ToUpper(s)]
	return val, ok
}

func (p Phase) String() string {
	if val, ok := phaseValueToString[p]; ok {
		return val
	}
	return "UNKNOWN"
}

// IsTerminal true для фаз, из которых нет выхода.
// FullTime терминальна, если не назначена серия пенальти.
func (p Phase) IsTerminal() bool {
	return p == PhasePenaltyShootout || p == PhaseAborted
}

// ClockRunning - идут ли игровые часы в этой фазе.
func (p Phase) ClockRunning() bool {
	return p == PhasePlaying || p == PhasePaused
}

// AwaitingKickOff - фазы, где матч ждет начального удара.
func (p Phase) AwaitingKickOff() bool {
	return p == PhasePreKickOff || p == PhaseHalfTime
}
