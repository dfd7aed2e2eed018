package domain

import "strings"

// Side - команда (Left/Right) или конец поля.
// Конец поля Left - это половина с отрицательным X.
type Side uint8

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

var sideStringToValue = map[string]Side{
	"LEFT":  SideLeft,
	"L":     SideLeft,
	"RIGHT": SideRight,
	"R":     SideRight,
}

var sideValueToString = map[Side]string{
	SideNone:  "None",
	SideLeft:  "Left",
	SideRight: "Right",
}

// ParseSide конвертирует строку в Side (регистр не важен).
func ParseSide(s string) Side {
	if val, ok := sideStringToValue[strings.ToUpper(strings.TrimSpace(s))]; ok {
		return val
	}
	return SideNone
}

func (s Side) String() string {
	if val, ok := sideValueToString[s]; ok {
		return val
	}
	return "None"
}

// Opponent возвращает противоположную сторону.
func (s Side) Opponent() Side {
	switch s {
	case SideLeft:
		return SideRight
	case SideRight:
		return SideLeft
	}
	return SideNone
}

// Sign знак X конца поля: Left = -1, Right = +1.
func (s Side) Sign() float64 {
	switch s {
	case SideLeft:
		return -1
	case SideRight:
		return 1
	}
	return 0
}

// EndForX конец поля, к которому относится координата X.
func EndForX(x float64) Side {
	if x < 0 {
		return SideLeft
	}
	return SideRight
}

// Posture - поза игрока, как ее видит физика.
type Posture uint8

const (
	PostureStanding    Posture = iota
	PostureNotStanding         // завален, но не лежит
	PostureOnGround            // лежит
)

var postureValueToString = map[Posture]string{
	PostureStanding:    "standing",
	PostureNotStanding: "not_standing",
	PostureOnGround:    "on_ground",
}

// ParsePosture конвертирует строку физики в Posture. Неизвестное считаем "стоит".
func ParsePosture(s string) Posture {
	for k, v := range postureValueToString {
		if v == strings.ToLower(strings.TrimSpace(s)) {
			return k
		}
	}
	return PostureStanding
}

func (p Posture) String() string {
	if val, ok := postureValueToString[p]; ok {
		return val
	}
	return "unknown"
}

func (p Posture) IsStanding() bool { return p == PostureStanding }

func (p Posture) IsOnGround() bool { return p == PostureOnGround }
