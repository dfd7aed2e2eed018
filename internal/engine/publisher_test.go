package engine

import (
	"errors"
	"sync"
	"testing"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/api"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSink struct {
	mu        sync.Mutex
	broadcast []api.MatchEvent
	direct    map[string][]api.MatchEvent
}

func newRecordingSink() *recordingSink {
	return &recordingSink{direct: make(map[string][]api.MatchEvent)}
}

func (s *recordingSink) Broadcast(ev api.MatchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcast = append(s.broadcast, ev)
}

func (s *recordingSink) SendTo(id string, ev api.MatchEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.direct[id] = append(s.direct[id], ev)
}

func (s *recordingSink) events() []api.MatchEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]api.MatchEvent(nil), s.broadcast...)
}

func sampleTickResult() TickResult {
	left2 := domain.PlayerID{Team: domain.SideLeft, Unum: 2}
	right4 := domain.PlayerID{Team: domain.SideRight, Unum: 4}
	fk := domain.Decision{Kind: domain.DecisionFreeKick, Team: domain.SideRight, Pos: domain.Vec3{X: 1, Y: 2}, Pause: 1, Tick: 10, Time: 4.5, Cause: domain.ViolationCharging}
	return TickResult{
		Tick:        10,
		Time:        4.5,
		Applied:     true,
		Phase:       domain.PhasePaused,
		Transitions: []PhaseTransition{{From: domain.PhasePlaying, To: domain.PhasePaused}},
		Decisions:   []domain.Decision{fk},
		Violations: []domain.RuleViolation{
			{Kind: domain.ViolationCharging, Player: left2, Victim: right4, Time: 4.5, Pos: domain.Vec3{X: 1, Y: 2}, Decision: &fk},
		},
		Relocations: []domain.Relocation{
			{Player: left2, Pos: domain.Vec3{X: -1}, Yaw: 45, Reason: domain.ViolationCharging},
			{Player: right4, Pos: domain.Vec3{X: 3}, Reason: domain.ViolationUnknown},
		},
		Commands: []CommandOutcome{
			{Command: domain.InternalCommand{Type: domain.CommandBeam, Source: "monitor-7"}, Err: errors.New("beaming is not allowed")},
			{Command: domain.InternalCommand{Type: domain.CommandDropBall, Source: "monitor-7"}, Msg: "drop ball"},
		},
		Score:        domain.Score{Left: 2, Right: 1},
		ScoreChanged: true,
	}
}

func TestPublisher_EventOrderAndContent(t *testing.T) {
	sink := newRecordingSink()
	p := NewDecisionPublisher("match-1", params.Defaults(), sink)

	p.Publish(sampleTickResult())
	events := sink.events()

	var types []string
	for _, ev := range events {
		types = append(types, ev.Type)
		assert.Equal(t, "match-1", ev.MatchID)
		assert.NotEmpty(t, ev.ID)
		assert.Equal(t, "PAUSED", ev.Phase)
	}
	assert.Equal(t, []string{
		api.EventPhase, api.EventDecision, api.EventScore,
		api.EventViolation, api.EventRelocation, api.EventRelocation,
	}, types)

	dec := events[1]
	require.NotNil(t, dec.Decision)
	assert.Equal(t, "FREE_KICK", dec.Decision.Kind)
	assert.Equal(t, "Right", dec.Decision.Team)
	assert.Equal(t, 1.0, dec.Decision.Pause)
	assert.Equal(t, api.Vec{X: 1, Y: 2}, dec.Decision.Pos)
	assert.Equal(t, "CHARGING", dec.Decision.Cause)
	assert.Equal(t, "free_kick_right", dec.Label)

	assert.Equal(t, &api.ScoreView{Left: 2, Right: 1}, events[2].Score)

	v := events[3].Violation
	require.NotNil(t, v)
	assert.Equal(t, "CHARGING", v.Kind)
	assert.Equal(t, api.PlayerRef{Team: "Left", Unum: 2}, v.Player)
	require.NotNil(t, v.Victim)
	assert.Equal(t, api.PlayerRef{Team: "Right", Unum: 4}, *v.Victim)
	assert.Equal(t, "FREE_KICK", v.Decision)

	assert.Equal(t, "CHARGING", events[4].Relocation.Reason)
	assert.Equal(t, "BEAM", events[5].Relocation.Reason)

	// Ошибка команды - только отправителю
	require.Len(t, sink.direct["monitor-7"], 1)
	errEv := sink.direct["monitor-7"][0]
	assert.Equal(t, api.EventError, errEv.Type)
	assert.Contains(t, errEv.Message, "beaming")
}

func TestPublisher_ReportingSwitches(t *testing.T) {
	ps := params.Defaults()
	ps.ReportScore = false
	ps.LabelMessages = false
	p := NewDecisionPublisher("match-1", ps, nil)

	for _, ev := range p.Events(sampleTickResult()) {
		assert.NotEqual(t, api.EventScore, ev.Type)
		assert.Empty(t, ev.Label)
	}

	// Без sink публикация ничего не делает
	p.Publish(sampleTickResult())
}

func TestPublisher_SkippedTickIsSilent(t *testing.T) {
	p := NewDecisionPublisher("match-1", params.Defaults(), nil)
	assert.Empty(t, p.Events(TickResult{Skipped: domain.ErrBadSnapshot}))
}
