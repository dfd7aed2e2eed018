package api

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Validator - интерфейс, который могут реализовать DTO
type Validator interface {
	Validate() error
}

func isSide(s string) bool {
	switch strings.ToUpper(s) {
	case "LEFT", "L", "RIGHT", "R":
		return true
	}
	return false
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func (p KickOffPayload) Validate() error {
	if p.Side != "" && !isSide(p.Side) {
		return fmt.Errorf("unknown side %q", p.Side)
	}
	return nil
}

func (p RestartPayload) Validate() error {
	switch strings.ToUpper(p.Kind) {
	case "FREE_KICK", "GOAL_KICK", "THROW_IN", "CORNER_KICK":
	default:
		return fmt.Errorf("restart kind %q is not a set piece", p.Kind)
	}
	if !isSide(p.Side) {
		return fmt.Errorf("unknown side %q", p.Side)
	}
	if !finite(p.X, p.Y) {
		return errors.New("restart position must be finite")
	}
	return nil
}

func (p DropBallPayload) Validate() error {
	if (p.X == nil) != (p.Y == nil) {
		return errors.New("drop ball needs both x and y or neither")
	}
	if p.X != nil && !finite(*p.X, *p.Y) {
		return errors.New("drop ball position must be finite")
	}
	return nil
}

func (p BeamPayload) Validate() error {
	if !isSide(p.Team) {
		return fmt.Errorf("unknown team %q", p.Team)
	}
	if p.Unum <= 0 {
		return errors.New("unum must be positive")
	}
	if !finite(p.X, p.Y, p.Yaw) {
		return errors.New("beam position must be finite")
	}
	return nil
}

func (f PhysicsFrame) Validate() error {
	if f.Tick < 0 {
		return errors.New("tick must not be negative")
	}
	for _, p := range f.Players {
		if !isSide(p.Team) || p.Unum <= 0 {
			return fmt.Errorf("bad player reference %s/%d", p.Team, p.Unum)
		}
	}
	return nil
}
