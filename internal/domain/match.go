package domain

// Score - счет матча. Только растет.
type Score struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

// For возвращает голы команды.
func (s Score) For(team Side) int {
	switch team {
	case SideLeft:
		return s.Left
	case SideRight:
		return s.Right
	}
	return 0
}

// Add возвращает новый счет с голом команды team.
func (s Score) Add(team Side) Score {
	switch team {
	case SideLeft:
		s.Left++
	case SideRight:
		s.Right++
	}
	return s
}

// IsDraw - ничья.
func (s Score) IsDraw() bool {
	return s.Left == s.Right
}

// Restart - текущий стандарт: сначала пауза (Paused), затем ожидание касания.
type Restart struct {
	Kind          DecisionKind `json:"kind"`
	Team          Side         `json:"team"`
	Pos           Vec3         `json:"pos"`
	ResumeAt      float64      `json:"resumeAt"` // игровое время конца паузы
	AwaitingTouch bool         `json:"awaitingTouch"`
	Since         float64      `json:"since"` // с какого момента ждем касания
}

// Match - авторитетное состояние матча. Меняет только PhaseController.
type Match struct {
	ID    string `json:"id"`
	Phase Phase  `json:"phase"`
	Half  int    `json:"half"`
	Tick  int    `json:"tick"`

	Elapsed     float64 `json:"elapsed"`     // игровое время, сквозное через тайм
	WaitElapsed float64 `json:"waitElapsed"` // ожидание перед начальным ударом
	LastTime    float64 `json:"lastTime"`    // время физики последнего кадра
	Started     bool    `json:"started"`     // был ли хоть один кадр

	Score        Score    `json:"score"`
	Swapped      bool     `json:"swapped"` // команды поменялись воротами
	FirstKickOff Side     `json:"firstKickOff"`
	Restart      *Restart `json:"restart,omitempty"`

	Ball    Ball                 `json:"ball"`
	Touch   TouchState           `json:"touch"`
	Players map[PlayerID]*Player `json:"-"`
}

// NewMatch создает матч в фазе PreKickOff.
func NewMatch(id string) *Match {
	return &Match{
		ID:      id,
		Phase:   PhasePreKickOff,
		Half:    1,
		Players: make(map[PlayerID]*Player),
	}
}

// Clone глубокая копия: тик считается на копии и коммитится целиком.
func (m *Match) Clone() *Match {
	c := *m
	if m.Restart != nil {
		r := *m.Restart
		c.Restart = &r
	}
	c.Touch = m.Touch.clone()
	c.Players = make(map[PlayerID]*Player, len(m.Players))
	for id, p := range m.Players {
		cp := *p
		c.Players[id] = &cp
	}
	return &c
}

// SortedPlayers игроки в порядке ID.
func (m *Match) SortedPlayers() []*Player {
	out := make([]*Player, 0, len(m.Players))
	for _, p := range m.Players {
		out = append(out, p)
	}
	SortPlayers(out)
	return out
}

// DefendedEnd конец поля, который защищает команда в текущем тайме.
func (m *Match) DefendedEnd(team Side) Side {
	return DefendedEnd(team, m.Swapped)
}

// GoalOwner команда, защищающая ворота на конце end.
func (m *Match) GoalOwner(end Side) Side {
	if m.Swapped {
		return end.Opponent()
	}
	return end
}

// DefendedEnd: команда Left защищает конец Left, пока стороны не поменялись.
func DefendedEnd(team Side, swapped bool) Side {
	if swapped {
		return team.Opponent()
	}
	return team
}
