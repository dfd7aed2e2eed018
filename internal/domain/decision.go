package domain

import (
	"fmt"
	"strings"
)

// DecisionKind - тип решения судьи.
type DecisionKind uint8

const (
	DecisionNone DecisionKind = iota
	DecisionKickOff
	DecisionFreeKick
	DecisionGoalKick
	DecisionThrowIn
	DecisionCornerKick
	DecisionGoal
	DecisionDropBall
	DecisionHalfTime
	DecisionFullTime
	DecisionPenaltyShootout
)

var decisionStringToValue = map[string]DecisionKind{
	"KICK_OFF":         DecisionKickOff,
	"FREE_KICK":        DecisionFreeKick,
	"GOAL_KICK":        DecisionGoalKick,
	"THROW_IN":         DecisionThrowIn,
	"CORNER_KICK":      DecisionCornerKick,
	"GOAL":             DecisionGoal,
	"DROP_BALL":        DecisionDropBall,
	"HALF_TIME":        DecisionHalfTime,
	"FULL_TIME":        DecisionFullTime,
	"PENALTY_SHOOTOUT": DecisionPenaltyShootout,
}

var decisionValueToString = map[DecisionKind]string{
	DecisionKickOff:         "KICK_OFF",
	DecisionFreeKick:        "FREE_KICK",
	DecisionGoalKick:        "GOAL_KICK",
	DecisionThrowIn:         "THROW_IN",
	DecisionCornerKick:      "CORNER_KICK",
	DecisionGoal:            "GOAL",
	DecisionDropBall:        "DROP_BALL",
	DecisionHalfTime:        "HALF_TIME",
	DecisionFullTime:        "FULL_TIME",
	DecisionPenaltyShootout: "PENALTY_SHOOTOUT",
}

// Метки режимов игры в формате протокола монитора (Team-зависимые).
var decisionLabelFormat = map[DecisionKind]string{
	DecisionKickOff:         "KickOff_%s",
	DecisionFreeKick:        "free_kick_%s",
	DecisionGoalKick:        "goal_kick_%s",
	DecisionThrowIn:         "KickIn_%s",
	DecisionCornerKick:      "corner_kick_%s",
	DecisionGoal:            "Goal_%s",
	DecisionPenaltyShootout: "penalty_shoot_%s",
}

// ParseDecisionKind конвертирует строку из JSON в DecisionKind.
func ParseDecisionKind(s string) DecisionKind {
	if val, ok := decisionStringToValue[strings.ToUpper(s)]; ok {
		return val
	}
	return DecisionNone
}

func (k DecisionKind) String() string {
	if val, ok := decisionValueToString[k]; ok {
		return val
	}
	return "NONE"
}

// IsSetPiece - стандарт, который выполняет одна команда.
func (k DecisionKind) IsSetPiece() bool {
	switch k {
	case DecisionKickOff, DecisionFreeKick, DecisionGoalKick, DecisionThrowIn, DecisionCornerKick:
		return true
	}
	return false
}

// Decision - авторитетное решение судьи.
type Decision struct {
	Kind  DecisionKind `json:"kind"`
	Pos   Vec3         `json:"pos"`
	Team  Side         `json:"team"`  // команда, выполняющая стандарт / забившая
	Pause float64      `json:"pause"` // пауза до возобновления, сек
	Tick  int          `json:"tick"`
	Time  float64      `json:"time"` // игровое время
	// Cause - нарушение, из-за которого назначен стандарт
	Cause ViolationKind `json:"cause,omitempty"`
}

// Label строка режима игры ("KickOff_Left", "GameOver"...).
func (d Decision) Label() string {
	switch d.Kind {
	case DecisionDropBall:
		return "PlayOn"
	case DecisionHalfTime:
		return "BeforeKickOff"
	case DecisionFullTime:
		return "GameOver"
	}
	// Штрафной за офсайд в протоколе монитора отдельный режим
	if d.Kind == DecisionFreeKick && d.Cause == ViolationOffside && d.Team != SideNone {
		return "offside_" + strings.ToLower(d.Team.String())
	}
	format, ok := decisionLabelFormat[d.Kind]
	if !ok || d.Team == SideNone {
		return d.Kind.String()
	}
	if d.Kind == DecisionKickOff || d.Kind == DecisionThrowIn || d.Kind == DecisionGoal {
		return fmt.Sprintf(format, d.Team.String())
	}
	return fmt.Sprintf(format, strings.ToLower(d.Team.String()))
}
