package domain

// Ball - состояние мяча в матче.
type Ball struct {
	Pos           Vec3     `json:"pos"`
	Vel           Vec3     `json:"vel"`
	LastTouchedBy PlayerID `json:"lastTouchedBy"` // слабая ссылка, только для поиска
	LastTouchTime float64  `json:"lastTouchTime"`
	InPlay        bool     `json:"inPlay"`
}

// OutOfPlay - причина выхода мяча из игры.
type OutOfPlay uint8

const (
	OutNone     OutOfPlay = iota
	OutSideLine           // боковая линия
	OutGoalLine           // лицевая линия мимо ворот
	OutGoal               // мяч целиком в воротах
)

var outValueToString = map[OutOfPlay]string{
	OutNone:     "none",
	OutSideLine: "side_line",
	OutGoalLine: "goal_line",
	OutGoal:     "goal",
}

func (o OutOfPlay) String() string {
	if val, ok := outValueToString[o]; ok {
		return val
	}
	return "unknown"
}

// BallState - результат BallTracker за один тик.
type BallState struct {
	Ball Ball `json:"ball"`

	// Касания этого тика: ближайший к мячу первый, дальше по ID.
	Touches []PlayerID `json:"touches,omitempty"`
	// Группа касаний после этого тика (коммитится в Match.Touch).
	Touch TouchState `json:"touch"`

	Out     OutOfPlay `json:"out"`
	GoalEnd Side      `json:"goalEnd"` // конец поля, в чьи ворота влетел мяч
	ExitPos Vec3      `json:"exitPos"` // где мяч покинул поле

	// Отметки офсайда, действовавшие в момент приема мяча на этом тике.
	OffsideMarked []PlayerID `json:"offsideMarked,omitempty"`
	// Игрок, принявший мяч на этом тике после паса партнера.
	Receiver PlayerID `json:"receiver"`

	// Противоречивые данные (оба гола за тик) - контроллер игнорирует тик.
	Inconsistent bool `json:"inconsistent"`
}

// NewTouch true, если на этом тике было касание.
func (b BallState) NewTouch() bool {
	return len(b.Touches) > 0
}

// TouchState - память о касаниях между тиками.
type TouchState struct {
	// Последние касания одной команды, не больше MaxTouchGroupSize.
	Group []PlayerID `json:"group,omitempty"`
	Team  Side       `json:"team"`
	// Игроки в положении вне игры в момент последнего касания их команды.
	OffsideMarked []PlayerID `json:"offsideMarked,omitempty"`
}

// LastToucher последний игрок в группе касаний.
func (t TouchState) LastToucher() PlayerID {
	if len(t.Group) == 0 {
		return NoPlayer
	}
	return t.Group[len(t.Group)-1]
}

func (t TouchState) clone() TouchState {
	c := t
	c.Group = append([]PlayerID(nil), t.Group...)
	c.OffsideMarked = append([]PlayerID(nil), t.OffsideMarked...)
	return c
}

// ContainsPlayer - есть ли id в списке.
func ContainsPlayer(ids []PlayerID, id PlayerID) bool {
	for _, other := range ids {
		if other == id {
			return true
		}
	}
	return false
}
