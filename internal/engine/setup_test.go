package engine

import (
	"encoding/json"
	"os"
	"testing"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/logger"

	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

// pitch - источник кадров физики для контроллера с фиксированным шагом.
type pitch struct {
	t    *testing.T
	c    *PhaseController
	tick int
	now  float64
	dt   float64

	ball         domain.Vec3
	players      []domain.PlayerFrame
	ballContacts []domain.PlayerID // только для следующего кадра
	contacts     []domain.Contact  // только для следующего кадра

	frames []domain.ReplayFrame
}

func testParams(mutate func(ps *params.ParameterSet)) params.ParameterSet {
	ps := params.Defaults()
	ps.BeamNoiseXY = 0
	ps.BeamNoiseAngle = 0
	if mutate != nil {
		mutate(&ps)
	}
	return ps
}

func newPitch(t *testing.T, ps params.ParameterSet) *pitch {
	t.Helper()
	return &pitch{
		t:  t,
		c:  NewPhaseController("test-match", ps, 1),
		dt: 0.5,
	}
}

func (p *pitch) snapshot() *domain.Snapshot {
	p.tick++
	snap := &domain.Snapshot{
		Tick:         p.tick,
		Time:         p.now,
		Ball:         domain.BallFrame{Pos: p.ball},
		Players:      append([]domain.PlayerFrame(nil), p.players...),
		BallContacts: p.ballContacts,
		Contacts:     p.contacts,
	}
	p.now += p.dt
	p.ballContacts = nil
	p.contacts = nil
	return snap
}

// step продвигает матч на один кадр с командами тренера.
func (p *pitch) step(cmds ...domain.InternalCommand) TickResult {
	snap := p.snapshot()
	res := p.c.Advance(snap, cmds)
	if res.Applied {
		p.frames = append(p.frames, domain.ReplayFrame{Snapshot: *snap, Commands: cmds})
	}
	return res
}

// until шагает, пока cond не выполнится. Возвращает результат последнего тика.
func (p *pitch) until(maxSteps int, cond func(res TickResult) bool) TickResult {
	p.t.Helper()
	for i := 0; i < maxSteps; i++ {
		res := p.step()
		if cond(res) {
			return res
		}
	}
	p.t.Fatalf("condition not reached in %d steps (phase %s, time %.2f)",
		maxSteps, p.c.State().Phase, p.c.State().Elapsed)
	return TickResult{}
}

func (p *pitch) addPlayer(team domain.Side, unum int, x, y float64) domain.PlayerID {
	id := domain.PlayerID{Team: team, Unum: unum}
	p.players = append(p.players, domain.PlayerFrame{
		ID:        id,
		RobotType: unum % 3,
		Pos:       domain.Vec3{X: x, Y: y},
	})
	return id
}

func (p *pitch) setPosture(id domain.PlayerID, posture domain.Posture) {
	for i := range p.players {
		if p.players[i].ID == id {
			p.players[i].Posture = posture
		}
	}
}

func command(t *testing.T, typ domain.CommandType, payload any) domain.InternalCommand {
	t.Helper()
	cmd := domain.InternalCommand{Type: typ, Source: "monitor-1"}
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		cmd.Payload = raw
	}
	return cmd
}

func decisionKinds(res TickResult) []domain.DecisionKind {
	var kinds []domain.DecisionKind
	for _, d := range res.Decisions {
		kinds = append(kinds, d.Kind)
	}
	return kinds
}

func findDecision(res TickResult, kind domain.DecisionKind) (domain.Decision, bool) {
	for _, d := range res.Decisions {
		if d.Kind == kind {
			return d, true
		}
	}
	return domain.Decision{}, false
}

func findViolation(res TickResult, kind domain.ViolationKind) (domain.RuleViolation, bool) {
	for _, v := range res.Violations {
		if v.Kind == kind {
			return v, true
		}
	}
	return domain.RuleViolation{}, false
}

// movePlayer задает кадр игрока для следующих тиков.
func (p *pitch) movePlayer(id domain.PlayerID, pos, vel domain.Vec3, yaw float64) {
	for i := range p.players {
		if p.players[i].ID == id {
			p.players[i].Pos = pos
			p.players[i].Vel = vel
			p.players[i].Yaw = yaw
		}
	}
}
