package systems

import (
	"sort"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// BallTracker выводит касания, группу касаний и выход мяча из игры
// из сырых данных физики. Собственного состояния между тиками нет:
// память о касаниях лежит в Match.Touch.
type BallTracker struct {
	params params.ParameterSet
	field  Field
	log    *logrus.Entry
}

func NewBallTracker(ps params.ParameterSet) *BallTracker {
	return &BallTracker{
		params: ps,
		field:  NewField(ps),
		log:    logger.Log.WithFields(logrus.Fields{"component": "ball_tracker"}),
	}
}

type touchCandidate struct {
	id   domain.PlayerID
	dist float64
}

// Update считает BallState за тик. m - рабочая копия матча: игроки уже
// обновлены из кадра, m.Ball и m.Touch еще с прошлого тика. m не меняется.
func (t *BallTracker) Update(m *domain.Match, snap *domain.Snapshot) domain.BallState {
	prev := m.Ball
	state := domain.BallState{
		Ball: domain.Ball{
			Pos:           snap.Ball.Pos,
			Vel:           snap.Ball.Vel,
			LastTouchedBy: prev.LastTouchedBy,
			LastTouchTime: prev.LastTouchTime,
		},
		Touch: m.Touch,
	}

	state.Touches = t.detectTouches(m, snap)
	if len(state.Touches) > 0 {
		t.applyTouch(m, &state, snap.Time)
	}

	t.classifyOut(&state, snap)
	state.Ball.InPlay = state.Out == domain.OutNone && !state.Inconsistent
	return state
}

// detectTouches: явные контакты физики плюс эвристика "рядом и мяч изменил скорость".
func (t *BallTracker) detectTouches(m *domain.Match, snap *domain.Snapshot) []domain.PlayerID {
	ballPos := snap.Ball.Pos
	seen := make(map[domain.PlayerID]bool)
	var candidates []touchCandidate

	add := func(p *domain.Player) {
		if seen[p.ID] {
			return
		}
		seen[p.ID] = true
		candidates = append(candidates, touchCandidate{id: p.ID, dist: p.Pos.Dist2D(ballPos)})
	}

	for _, id := range snap.BallContacts {
		if p, ok := m.Players[id]; ok {
			add(p)
		}
	}

	// Без прошлого кадра изменение скорости не определено
	if m.Started {
		deltaSpeed := snap.Ball.Vel.Sub(m.Ball.Vel).Len()
		if deltaSpeed >= t.params.TouchMinDeltaSpeed {
			for _, p := range m.SortedPlayers() {
				if p.Pos.Dist2D(ballPos) <= t.params.TouchDistance {
					add(p)
				}
			}
		}
	}

	// Ближайший к мячу считается коснувшимся, равенство решает ID
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].dist != candidates[j].dist {
			return candidates[i].dist < candidates[j].dist
		}
		return candidates[i].id.Less(candidates[j].id)
	})

	out := make([]domain.PlayerID, len(candidates))
	for i, c := range candidates {
		out[i] = c.id
	}
	return out
}

func (t *BallTracker) applyTouch(m *domain.Match, state *domain.BallState, now float64) {
	toucher := state.Touches[0]
	prevToucher := m.Ball.LastTouchedBy
	touch := m.Touch

	// Прием паса партнера: проверяем отметки офсайда, действовавшие до касания
	if toucher.Team == touch.Team && !prevToucher.IsZero() &&
		prevToucher.Team == toucher.Team && prevToucher != toucher {
		state.Receiver = toucher
		state.OffsideMarked = append([]domain.PlayerID(nil), touch.OffsideMarked...)
	}

	var group []domain.PlayerID
	if touch.Team == toucher.Team {
		for _, id := range touch.Group {
			if id != toucher {
				group = append(group, id)
			}
		}
	}
	group = append(group, toucher)
	if limit := t.params.MaxTouchGroupSize; len(group) > limit {
		group = group[len(group)-limit:]
	}

	next := domain.TouchState{Group: group, Team: toucher.Team}
	if t.params.UseOffside {
		next.OffsideMarked = OffsidePositions(m.SortedPlayers(), state.Ball.Pos, toucher, m.Swapped)
	}
	state.Touch = next
	state.Ball.LastTouchedBy = toucher
	state.Ball.LastTouchTime = now

	t.log.WithFields(logrus.Fields{
		"tick":    m.Tick,
		"toucher": toucher.String(),
		"group":   len(group),
	}).Debug("Ball touched")
}

func (t *BallTracker) classifyOut(state *domain.BallState, snap *domain.Snapshot) {
	pos := state.Ball.Pos

	goalEnds := make(map[domain.Side]bool)
	for _, end := range snap.GoalContacts {
		if end == domain.SideLeft || end == domain.SideRight {
			goalEnds[end] = true
		}
	}
	if end, ok := t.field.GoalEnd(pos); ok {
		goalEnds[end] = true
	}

	if len(goalEnds) > 1 {
		state.Inconsistent = true
		t.log.WithFields(logrus.Fields{
			"tick": snap.Tick,
			"pos":  pos,
		}).Warn("Goal detected at both ends in one tick")
		return
	}
	for end := range goalEnds {
		state.Out = domain.OutGoal
		state.GoalEnd = end
		state.ExitPos = t.field.GoalCenter(end)
		return
	}

	if out := t.field.OutOfBounds(pos); out != domain.OutNone {
		state.Out = out
		state.GoalEnd = domain.EndForX(pos.X)
		state.ExitPos = t.field.Clamp(pos)
	}
}

// OffsidePositions - игроки команды пасующего в положении вне игры:
// на чужой половине, ближе к чужой лицевой линии, чем мяч и предпоследний защитник.
func OffsidePositions(players []*domain.Player, ballPos domain.Vec3, passer domain.PlayerID, swapped bool) []domain.PlayerID {
	attackedEnd := domain.DefendedEnd(passer.Team.Opponent(), swapped)

	var defenderDepths []float64
	for _, p := range players {
		if p.ID.Team == passer.Team.Opponent() {
			defenderDepths = append(defenderDepths, Depth(p.Pos, attackedEnd))
		}
	}
	if len(defenderDepths) < 2 {
		return nil
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(defenderDepths)))
	line := defenderDepths[1]
	ballDepth := Depth(ballPos, attackedEnd)

	var marked []domain.PlayerID
	for _, p := range players {
		if p.ID.Team != passer.Team || p.ID == passer {
			continue
		}
		depth := Depth(p.Pos, attackedEnd)
		if depth > 0 && depth > ballDepth && depth > line {
			marked = append(marked, p.ID)
		}
	}
	return marked
}
