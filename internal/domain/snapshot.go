package domain

import (
	"errors"
	"fmt"
	"math"
)

// ErrBadSnapshot - кадр физики непригоден (тик пропускается).
var ErrBadSnapshot = errors.New("bad physics snapshot")

// BallFrame - мяч в кадре физики.
type BallFrame struct {
	Pos Vec3 `json:"pos" msgpack:"pos"`
	Vel Vec3 `json:"vel" msgpack:"vel"`
}

// PlayerFrame - игрок в кадре физики.
type PlayerFrame struct {
	ID        PlayerID `json:"id" msgpack:"id"`
	Goalie    bool     `json:"goalie,omitempty" msgpack:"goalie"`
	RobotType int      `json:"robotType,omitempty" msgpack:"robot_type"`
	Pos       Vec3     `json:"pos" msgpack:"pos"`
	Vel       Vec3     `json:"vel" msgpack:"vel"`
	Yaw       float64  `json:"yaw" msgpack:"yaw"`
	Posture   Posture  `json:"posture" msgpack:"posture"`
}

// Contact - контакт двух игроков на этом шаге физики.
type Contact struct {
	A PlayerID `json:"a" msgpack:"a"`
	B PlayerID `json:"b" msgpack:"b"`
}

// Snapshot - разрешенное физикой состояние за один тик.
type Snapshot struct {
	Tick    int           `json:"tick" msgpack:"tick"`
	Time    float64       `json:"time" msgpack:"time"` // время симуляции, сек
	Ball    BallFrame     `json:"ball" msgpack:"ball"`
	Players []PlayerFrame `json:"players" msgpack:"players"`

	Contacts     []Contact  `json:"contacts,omitempty" msgpack:"contacts"`
	BallContacts []PlayerID `json:"ballContacts,omitempty" msgpack:"ball_contacts"`
	// Срабатывания регистраторов ворот (конец поля, в чьи ворота попал мяч).
	GoalContacts []Side `json:"goalContacts,omitempty" msgpack:"goal_contacts"`
}

// Validate проверяет кадр на пригодность. Ошибка означает "пропустить тик".
func (s *Snapshot) Validate() error {
	if s == nil {
		return fmt.Errorf("%w: nil", ErrBadSnapshot)
	}
	if math.IsNaN(s.Time) || math.IsInf(s.Time, 0) || s.Time < 0 {
		return fmt.Errorf("%w: time %v", ErrBadSnapshot, s.Time)
	}
	if !s.Ball.Pos.IsFinite() || !s.Ball.Vel.IsFinite() {
		return fmt.Errorf("%w: ball state is not finite", ErrBadSnapshot)
	}
	seen := make(map[PlayerID]bool, len(s.Players))
	for _, p := range s.Players {
		if p.ID.Team == SideNone || p.ID.Unum <= 0 {
			return fmt.Errorf("%w: player id %v", ErrBadSnapshot, p.ID)
		}
		if seen[p.ID] {
			return fmt.Errorf("%w: duplicate player %s", ErrBadSnapshot, p.ID)
		}
		seen[p.ID] = true
		if !p.Pos.IsFinite() || !p.Vel.IsFinite() || math.IsNaN(p.Yaw) || math.IsInf(p.Yaw, 0) {
			return fmt.Errorf("%w: player %s state is not finite", ErrBadSnapshot, p.ID)
		}
	}
	return nil
}
