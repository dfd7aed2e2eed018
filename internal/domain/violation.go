package domain

import "strings"

// ViolationKind - тип нарушения правил.
type ViolationKind uint8

const (
	ViolationUnknown ViolationKind = iota
	ViolationOffside
	ViolationCharging
	ViolationAreaOccupancy
	ViolationNotStanding
	ViolationGrounded
	ViolationOutOfBounds
	ViolationMinDistance
)

var violationValueToString = map[ViolationKind]string{
	ViolationOffside:       "OFFSIDE",
	ViolationCharging:      "CHARGING",
	ViolationAreaOccupancy: "AREA_OCCUPANCY",
	ViolationNotStanding:   "NOT_STANDING",
	ViolationGrounded:      "GROUNDED",
	ViolationOutOfBounds:   "OUT_OF_BOUNDS",
	ViolationMinDistance:   "MIN_DISTANCE",
}

// ParseViolationKind обратная конвертация (для записей и тестов).
func ParseViolationKind(s string) ViolationKind {
	upper := strings.ToUpper(s)
	for k, v := range violationValueToString {
		if v == upper {
			return k
		}
	}
	return ViolationUnknown
}

func (k ViolationKind) String() string {
	if val, ok := violationValueToString[k]; ok {
		return val
	}
	return "UNKNOWN"
}

// RuleViolation - вердикт детектора. Носит рекомендательный характер,
// решение (Decision) заполняет PhaseController.
type RuleViolation struct {
	Kind     ViolationKind `json:"kind"`
	Player   PlayerID      `json:"player"`
	Victim   PlayerID      `json:"victim,omitempty"` // пострадавший (charging)
	Time     float64       `json:"time"`
	Pos      Vec3          `json:"pos"`
	Involved int           `json:"involved,omitempty"` // сколько игроков участвует (min distance: 1, 2, 3)
	Limit    float64       `json:"limit,omitempty"`    // сработавший порог
	Decision *Decision     `json:"decision,omitempty"`
}

// Relocation - запрос физике переставить игрока (beam).
type Relocation struct {
	Player PlayerID      `json:"player"`
	Pos    Vec3          `json:"pos"`
	Yaw    float64       `json:"yaw"`
	Reason ViolationKind `json:"reason"`
}
