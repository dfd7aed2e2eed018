package systems

import (
	"math"
	"sort"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
)

// PositionalInput - все, что нужно для позиционных проверок одного тика.
type PositionalInput struct {
	Players []*domain.Player // в порядке ID
	Ball    domain.BallState
	Restart *domain.Restart // ожидающий стандарт, nil если нет
	Swapped bool
	Time    float64
}

// PositionalRuleEvaluator - офсайд, игроки в своей штрафной, минимальные дистанции.
// Не хранит состояния: одинаковый вход дает одинаковый набор нарушений.
type PositionalRuleEvaluator struct {
	params params.ParameterSet
	field  Field
}

func NewPositionalRuleEvaluator(ps params.ParameterSet) *PositionalRuleEvaluator {
	return &PositionalRuleEvaluator{params: ps, field: NewField(ps)}
}

// Evaluate возвращает нарушения, не больше одного на игрока.
// Порядок: офсайд, штрафная, дистанции (1, 2, 3 игрока), внутри - по ID.
func (e *PositionalRuleEvaluator) Evaluate(in PositionalInput) []domain.RuleViolation {
	var out []domain.RuleViolation
	flagged := make(map[domain.PlayerID]bool)
	emit := func(v domain.RuleViolation) {
		if flagged[v.Player] {
			return
		}
		flagged[v.Player] = true
		v.Time = in.Time
		out = append(out, v)
	}

	if v, ok := e.offside(in); ok {
		emit(v)
	}
	for _, v := range e.areaOccupancy(in) {
		emit(v)
	}
	for _, v := range e.minDistance(in) {
		emit(v)
	}
	return out
}

func (e *PositionalRuleEvaluator) offside(in PositionalInput) (domain.RuleViolation, bool) {
	if !e.params.UseOffside || in.Ball.Receiver.IsZero() {
		return domain.RuleViolation{}, false
	}
	if !domain.ContainsPlayer(in.Ball.OffsideMarked, in.Ball.Receiver) {
		return domain.RuleViolation{}, false
	}
	v := domain.RuleViolation{
		Kind:   domain.ViolationOffside,
		Player: in.Ball.Receiver,
		Pos:    in.Ball.Ball.Pos,
	}
	for _, p := range in.Players {
		if p.ID == in.Ball.Receiver {
			v.Pos = p.Pos
		}
	}
	return v, true
}

type rankedPlayer struct {
	p    *domain.Player
	dist float64
}

func rankByDistance(players []*domain.Player, ref domain.Vec3) []rankedPlayer {
	ranked := make([]rankedPlayer, 0, len(players))
	for _, p := range players {
		ranked = append(ranked, rankedPlayer{p: p, dist: p.Pos.Dist2D(ref)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].dist != ranked[j].dist {
			return ranked[i].dist < ranked[j].dist
		}
		return ranked[i].p.ID.Less(ranked[j].p.ID)
	})
	return ranked
}

// areaOccupancy: вратарь в своей штрафной разрешен всегда, лишними считаются
// полевые игроки, дальше всех стоящие от своих ворот.
func (e *PositionalRuleEvaluator) areaOccupancy(in PositionalInput) []domain.RuleViolation {
	var out []domain.RuleViolation
	for _, team := range []domain.Side{domain.SideLeft, domain.SideRight} {
		end := domain.DefendedEnd(team, in.Swapped)

		var inside []*domain.Player
		goalieInside := false
		for _, p := range domain.TeamPlayers(in.Players, team) {
			if !e.field.InPenaltyArea(p.Pos, end) {
				continue
			}
			if p.Goalie {
				goalieInside = true
				continue
			}
			inside = append(inside, p)
		}

		allowed := e.params.MaxPlayersInsideOwnArea
		if goalieInside {
			allowed--
		}
		if allowed < 0 {
			allowed = 0
		}
		total := len(inside)
		if goalieInside {
			total++
		}
		if len(inside) <= allowed {
			continue
		}

		ranked := rankByDistance(inside, e.field.GoalCenter(end))
		for _, r := range ranked[allowed:] {
			out = append(out, domain.RuleViolation{
				Kind:     domain.ViolationAreaOccupancy,
				Player:   r.p.ID,
				Pos:      r.p.Pos,
				Involved: total,
				Limit:    float64(e.params.MaxPlayersInsideOwnArea),
			})
		}
	}
	return out
}

// minDistance: точка отсчета - место стандарта, если он ожидается, иначе мяч.
func (e *PositionalRuleEvaluator) minDistance(in PositionalInput) []domain.RuleViolation {
	ref := in.Ball.Ball.Pos.Flat()
	if in.Restart != nil {
		ref = in.Restart.Pos.Flat()
	}

	var out []domain.RuleViolation

	// 1 игрок: соперник выполняющей стандарт команды слишком близко
	if in.Restart != nil && in.Restart.Kind.IsSetPiece() {
		limit := e.params.MinOppDistance
		if in.Restart.Kind == domain.DecisionFreeKick {
			limit = math.Max(limit, e.params.FreeKickDistance)
		}
		opponents := domain.TeamPlayers(in.Players, in.Restart.Team.Opponent())
		for _, r := range rankByDistance(opponents, ref) {
			if r.dist >= limit {
				break
			}
			out = append(out, domain.RuleViolation{
				Kind:     domain.ViolationMinDistance,
				Player:   r.p.ID,
				Pos:      r.p.Pos,
				Involved: 1,
				Limit:    limit,
			})
		}
	}

	// 2 и 3 игрока одной команды у точки: второй и третий по близости нарушают
	for _, team := range []domain.Side{domain.SideLeft, domain.SideRight} {
		ranked := rankByDistance(domain.TeamPlayers(in.Players, team), ref)
		if len(ranked) >= 2 && ranked[1].dist < e.params.Min2PlDistance {
			out = append(out, domain.RuleViolation{
				Kind:     domain.ViolationMinDistance,
				Player:   ranked[1].p.ID,
				Pos:      ranked[1].p.Pos,
				Involved: 2,
				Limit:    e.params.Min2PlDistance,
			})
		}
		if len(ranked) >= 3 && ranked[2].dist < e.params.Min3PlDistance {
			out = append(out, domain.RuleViolation{
				Kind:     domain.ViolationMinDistance,
				Player:   ranked[2].p.ID,
				Pos:      ranked[2].p.Pos,
				Involved: 3,
				Limit:    e.params.Min3PlDistance,
			})
		}
	}
	return out
}

// RelocationTarget - куда переставить нарушителя позиционного правила.
func (e *PositionalRuleEvaluator) RelocationTarget(v domain.RuleViolation, in PositionalInput) domain.Vec3 {
	switch v.Kind {
	case domain.ViolationAreaOccupancy:
		end := domain.DefendedEnd(v.Player.Team, in.Swapped)
		// Сразу за линией штрафной, по той же Y
		x := end.Sign() * (e.field.HalfLength - e.field.PenaltyLength - e.params.AgentRadius)
		return domain.Vec3{X: x, Y: v.Pos.Y}

	case domain.ViolationMinDistance:
		ref := in.Ball.Ball.Pos.Flat()
		if in.Restart != nil {
			ref = in.Restart.Pos.Flat()
		}
		radius := v.Limit + e.params.AgentRadius
		if v.Involved == 1 {
			radius = math.Max(radius, e.params.FreeKickMoveDist)
		}
		return RadialAway(ref, v.Pos, radius, domain.DefendedEnd(v.Player.Team, in.Swapped))
	}
	return v.Pos
}

// RadialAway точка на расстоянии radius от ref в направлении from.
// Если from совпадает с ref, отодвигаем к своим воротам.
func RadialAway(ref, from domain.Vec3, radius float64, ownEnd domain.Side) domain.Vec3 {
	dir := from.Sub(ref).Flat()
	l := dir.Len2D()
	if l < 1e-9 {
		dir = domain.Vec3{X: ownEnd.Sign()}
		l = 1
	}
	return ref.Add(dir.Scale(radius / l))
}
