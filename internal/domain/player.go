package domain

import (
	"fmt"
	"sort"
)

// PlayerID - команда + номер игрока.
type PlayerID struct {
	Team Side `json:"team" msgpack:"team"`
	Unum int  `json:"unum" msgpack:"unum"`
}

// NoPlayer - отсутствие игрока (аналог nil для слабых ссылок).
var NoPlayer = PlayerID{}

func (id PlayerID) String() string {
	if id.IsZero() {
		return "-"
	}
	return fmt.Sprintf("%s%d", id.Team.String()[:1], id.Unum)
}

func (id PlayerID) IsZero() bool {
	return id.Team == SideNone && id.Unum == 0
}

// Less задает детерминированный порядок обхода игроков.
func (id PlayerID) Less(other PlayerID) bool {
	if id.Team != other.Team {
		return id.Team < other.Team
	}
	return id.Unum < other.Unum
}

// Player - игрок в составе матча. Принадлежит Match.
type Player struct {
	ID        PlayerID `json:"id"`
	Goalie    bool     `json:"goalie"`
	RobotType int      `json:"robotType"`
	Pos       Vec3     `json:"pos"`
	Vel       Vec3     `json:"vel"`
	Yaw       float64  `json:"yaw"` // градусы
	Posture   Posture  `json:"posture"`

	// Таймеры позы. Меняет только StandingGroundMonitor.
	NotStandingDuration float64 `json:"notStandingDuration"`
	GroundedDuration    float64 `json:"groundedDuration"`
	NotStandingReported bool    `json:"notStandingReported"`
	GroundedReported    bool    `json:"groundedReported"`

	// Иммунитет к повторному charging. Меняет только ChargingFoulDetector.
	ChargingImmunityUntil float64 `json:"chargingImmunityUntil"`
}

// SortPlayers сортирует игроков по ID (детерминизм не зависит от порядка в map).
func SortPlayers(players []*Player) {
	sort.Slice(players, func(i, j int) bool {
		return players[i].ID.Less(players[j].ID)
	})
}

// TeamPlayers фильтрует игроков одной команды, сохраняя порядок.
func TeamPlayers(players []*Player, team Side) []*Player {
	out := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.ID.Team == team {
			out = append(out, p)
		}
	}
	return out
}
