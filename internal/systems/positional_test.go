package systems

import (
	"reflect"
	"testing"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
)

func positionalInput(ball domain.Vec3, players ...*domain.Player) PositionalInput {
	domain.SortPlayers(players)
	return PositionalInput{
		Players: players,
		Ball:    domain.BallState{Ball: domain.Ball{Pos: ball}},
		Time:    10,
	}
}

func kinds(vs []domain.RuleViolation) map[domain.PlayerID]domain.ViolationKind {
	out := make(map[domain.PlayerID]domain.ViolationKind)
	for _, v := range vs {
		out[v.Player] = v.Kind
	}
	return out
}

func TestPositional_Idempotent(t *testing.T) {
	ps := params.Defaults()
	ps.UseOffside = true
	e := NewPositionalRuleEvaluator(ps)

	in := positionalInput(domain.Vec3{X: 1},
		player(domain.SideLeft, 1, 1.1, 0),
		player(domain.SideLeft, 2, 1.2, 0.1),
		player(domain.SideLeft, 3, 1.5, 0.2),
		player(domain.SideRight, 1, -14, 0),
		player(domain.SideRight, 2, -14.5, 0.3),
		player(domain.SideRight, 3, -14.2, -0.3),
		player(domain.SideRight, 4, -14.1, 0.5),
	)

	first := e.Evaluate(in)
	second := e.Evaluate(in)
	if len(first) == 0 {
		t.Fatal("expected violations for the crowded input")
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("evaluation is not idempotent:\n%v\n%v", first, second)
	}
}

func TestPositional_AreaOccupancy(t *testing.T) {
	ps := params.Defaults()
	ps.MaxPlayersInsideOwnArea = 2
	e := NewPositionalRuleEvaluator(ps)
	line := ps.HalfLength()

	goalie := player(domain.SideLeft, 1, -line+0.2, 0)
	goalie.Goalie = true
	near := player(domain.SideLeft, 2, -line+0.5, 0.5)
	far := player(domain.SideLeft, 3, -line+1.5, -1)
	outside := player(domain.SideLeft, 4, -line+5, 0)

	got := kinds(e.Evaluate(positionalInput(domain.Vec3{X: 5}, goalie, near, far, outside)))

	// Вратарь + 2 полевых при лимите 2: лишний - дальний от ворот
	if got[far.ID] != domain.ViolationAreaOccupancy {
		t.Errorf("far defender: got %v, want AREA_OCCUPANCY", got[far.ID])
	}
	if _, ok := got[goalie.ID]; ok {
		t.Error("goalie must never be an area violator")
	}
	if _, ok := got[near.ID]; ok {
		t.Error("closest defender is allowed")
	}

	// После смены сторон те же позиции - чужая штрафная
	in := positionalInput(domain.Vec3{X: 5}, goalie, near, far, outside)
	in.Swapped = true
	for _, v := range e.Evaluate(in) {
		if v.Kind == domain.ViolationAreaOccupancy {
			t.Errorf("unexpected area violation after swap: %v", v.Player)
		}
	}
}

func TestPositional_MinDistanceAroundRestart(t *testing.T) {
	ps := params.Defaults()
	e := NewPositionalRuleEvaluator(ps)

	kicker := player(domain.SideLeft, 1, 0, 0.2)
	opp := player(domain.SideRight, 1, 1.5, 0) // ближе FreeKickDistance
	oppFar := player(domain.SideRight, 2, 3, 0)

	in := positionalInput(domain.Vec3{}, kicker, opp, oppFar)
	in.Restart = &domain.Restart{Kind: domain.DecisionFreeKick, Team: domain.SideLeft}

	vs := e.Evaluate(in)
	if len(vs) != 1 || vs[0].Player != opp.ID || vs[0].Involved != 1 {
		t.Fatalf("violations = %+v, want single one-player violation for R1", vs)
	}
	if vs[0].Limit != ps.FreeKickDistance {
		t.Errorf("limit = %v, want FreeKickDistance %v", vs[0].Limit, ps.FreeKickDistance)
	}

	target := e.RelocationTarget(vs[0], in)
	if d := target.Dist2D(domain.Vec3{}); d < ps.FreeKickMoveDist {
		t.Errorf("relocated %v from restart point, want at least %v", d, ps.FreeKickMoveDist)
	}

	// Для вбрасывания порог - MinOppDistance
	in.Restart.Kind = domain.DecisionThrowIn
	if vs := e.Evaluate(in); len(vs) != 0 {
		t.Errorf("throw-in: unexpected violations %+v", vs)
	}
}

func TestPositional_MinDistanceCrowding(t *testing.T) {
	ps := params.Defaults()
	e := NewPositionalRuleEvaluator(ps)

	first := player(domain.SideLeft, 1, 0.1, 0)
	second := player(domain.SideLeft, 2, 0.3, 0)
	third := player(domain.SideLeft, 3, 0.9, 0)
	fourth := player(domain.SideLeft, 4, 1.5, 0)

	vs := e.Evaluate(positionalInput(domain.Vec3{}, first, second, third, fourth))
	got := make(map[domain.PlayerID]int)
	for _, v := range vs {
		got[v.Player] = v.Involved
	}
	want := map[domain.PlayerID]int{second.ID: 2, third.ID: 3}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("crowding violations = %v, want %v", got, want)
	}
}

func TestPositional_Offside(t *testing.T) {
	receiver := player(domain.SideLeft, 2, 10, 0)
	in := positionalInput(domain.Vec3{X: 10}, player(domain.SideLeft, 1, 0, 0), receiver)
	in.Ball.Receiver = receiver.ID
	in.Ball.OffsideMarked = []domain.PlayerID{receiver.ID}

	disabled := NewPositionalRuleEvaluator(params.Defaults())
	if got := kinds(disabled.Evaluate(in)); got[receiver.ID] == domain.ViolationOffside {
		t.Error("offside reported while UseOffside is false")
	}

	ps := params.Defaults()
	ps.UseOffside = true
	enabled := NewPositionalRuleEvaluator(ps)
	got := kinds(enabled.Evaluate(in))
	if got[receiver.ID] != domain.ViolationOffside {
		t.Errorf("receiver: got %v, want OFFSIDE", got[receiver.ID])
	}
}
