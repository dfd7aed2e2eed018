package domain

import "testing"

func TestParseSide(t *testing.T) {
	tests := []struct {
		in   string
		want Side
	}{
		{"Left", SideLeft},
		{" right ", SideRight},
		{"L", SideLeft},
		{"r", SideRight},
		{"", SideNone},
		{"middle", SideNone},
	}
	for _, tt := range tests {
		if got := ParseSide(tt.in); got != tt.want {
			t.Errorf("ParseSide(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSide_Opponent(t *testing.T) {
	if SideLeft.Opponent() != SideRight || SideRight.Opponent() != SideLeft {
		t.Error("Left and Right must be opponents")
	}
	if SideNone.Opponent() != SideNone {
		t.Error("SideNone has no opponent")
	}
	if SideLeft.Sign() != -1 || SideRight.Sign() != 1 {
		t.Error("Left end is negative X, Right end is positive X")
	}
}

func TestDefendedEnd(t *testing.T) {
	if DefendedEnd(SideLeft, false) != SideLeft {
		t.Error("Left defends the Left end before sides change")
	}
	if DefendedEnd(SideLeft, true) != SideRight {
		t.Error("Left defends the Right end after sides change")
	}

	m := NewMatch("m1")
	m.Swapped = true
	if owner := m.GoalOwner(SideRight); owner != SideLeft {
		t.Errorf("GoalOwner(Right) after swap = %v, want Left", owner)
	}
}

func TestParsePosture(t *testing.T) {
	tests := []struct {
		in   string
		want Posture
	}{
		{"standing", PostureStanding},
		{"NOT_STANDING", PostureNotStanding},
		{"on_ground", PostureOnGround},
		{"flying", PostureStanding},
	}
	for _, tt := range tests {
		if got := ParsePosture(tt.in); got != tt.want {
			t.Errorf("ParsePosture(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestPlayerID_String(t *testing.T) {
	if s := (PlayerID{Team: SideRight, Unum: 7}).String(); s != "R7" {
		t.Errorf("String() = %q, want R7", s)
	}
	if s := NoPlayer.String(); s != "-" {
		t.Errorf("NoPlayer.String() = %q, want -", s)
	}
	if !(PlayerID{Team: SideLeft, Unum: 9}).Less(PlayerID{Team: SideRight, Unum: 1}) {
		t.Error("Left players sort before Right players")
	}
}
