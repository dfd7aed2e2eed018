package domain

import (
	"errors"
	"math"
	"testing"
)

func TestPhase_Strings(t *testing.T) {
	for _, p := range AllPhases {
		parsed, ok := ParsePhase(p.String())
		if !ok || parsed != p {
			t.Errorf("ParsePhase(%q) = %v, %v", p.String(), parsed, ok)
		}
	}
	if _, ok := ParsePhase("EXTRA_TIME"); ok {
		t.Error("unknown phase must not parse")
	}
	if !PhaseAborted.IsTerminal() || PhaseFullTime.IsTerminal() {
		t.Error("Aborted is terminal, FullTime is not")
	}
	if !PhasePaused.ClockRunning() || PhaseHalfTime.ClockRunning() {
		t.Error("clock runs in Paused, stops at HalfTime")
	}
}

func TestDecision_Label(t *testing.T) {
	tests := []struct {
		d    Decision
		want string
	}{
		{Decision{Kind: DecisionKickOff, Team: SideLeft}, "KickOff_Left"},
		{Decision{Kind: DecisionThrowIn, Team: SideRight}, "KickIn_Right"},
		{Decision{Kind: DecisionGoal, Team: SideRight}, "Goal_Right"},
		{Decision{Kind: DecisionFreeKick, Team: SideRight}, "free_kick_right"},
		{Decision{Kind: DecisionFreeKick, Team: SideRight, Cause: ViolationCharging}, "free_kick_right"},
		{Decision{Kind: DecisionFreeKick, Team: SideLeft, Cause: ViolationOffside}, "offside_left"},
		{Decision{Kind: DecisionFreeKick, Team: SideRight, Cause: ViolationOffside}, "offside_right"},
		{Decision{Kind: DecisionThrowIn, Team: SideLeft, Cause: ViolationOutOfBounds}, "KickIn_Left"},
		{Decision{Kind: DecisionCornerKick, Team: SideLeft}, "corner_kick_left"},
		{Decision{Kind: DecisionDropBall}, "PlayOn"},
		{Decision{Kind: DecisionHalfTime}, "BeforeKickOff"},
		{Decision{Kind: DecisionFullTime}, "GameOver"},
		{Decision{Kind: DecisionGoalKick}, "GOAL_KICK"},
	}
	for _, tt := range tests {
		if got := tt.d.Label(); got != tt.want {
			t.Errorf("%v Label() = %q, want %q", tt.d.Kind, got, tt.want)
		}
	}
}

func TestScore(t *testing.T) {
	s := Score{}.Add(SideLeft).Add(SideLeft).Add(SideRight).Add(SideNone)
	if s.For(SideLeft) != 2 || s.For(SideRight) != 1 {
		t.Errorf("score = %d:%d, want 2:1", s.Left, s.Right)
	}
	if s.IsDraw() {
		t.Error("2:1 is not a draw")
	}
}

func TestMatch_CloneIsDeep(t *testing.T) {
	m := NewMatch("m1")
	id := PlayerID{Team: SideLeft, Unum: 1}
	m.Players[id] = &Player{ID: id, Pos: Vec3{X: 1}}
	m.Restart = &Restart{Kind: DecisionKickOff, Team: SideLeft}

	c := m.Clone()
	c.Players[id].Pos.X = 5
	c.Restart.Team = SideRight
	delete(c.Players, id)

	if m.Players[id] == nil || m.Players[id].Pos.X != 1 {
		t.Error("clone shares players with the original")
	}
	if m.Restart.Team != SideLeft {
		t.Error("clone shares the restart with the original")
	}
}

func TestSnapshot_Validate(t *testing.T) {
	valid := func() *Snapshot {
		return &Snapshot{
			Tick: 1,
			Time: 0.5,
			Players: []PlayerFrame{
				{ID: PlayerID{Team: SideLeft, Unum: 1}},
				{ID: PlayerID{Team: SideRight, Unum: 1}},
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(s *Snapshot) *Snapshot
		wantErr bool
	}{
		{"valid", func(s *Snapshot) *Snapshot { return s }, false},
		{"nil", func(*Snapshot) *Snapshot { return nil }, true},
		{"negative time", func(s *Snapshot) *Snapshot { s.Time = -1; return s }, true},
		{"nan ball", func(s *Snapshot) *Snapshot { s.Ball.Vel.Y = math.NaN(); return s }, true},
		{"no team", func(s *Snapshot) *Snapshot { s.Players[0].ID.Team = SideNone; return s }, true},
		{"duplicate", func(s *Snapshot) *Snapshot { s.Players[1].ID = s.Players[0].ID; return s }, true},
		{"inf player", func(s *Snapshot) *Snapshot { s.Players[1].Pos.X = math.Inf(1); return s }, true},
		{"inf yaw", func(s *Snapshot) *Snapshot { s.Players[0].Yaw = math.Inf(-1); return s }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid()).Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBadSnapshot) {
				t.Errorf("error %v does not wrap ErrBadSnapshot", err)
			}
		})
	}
}
