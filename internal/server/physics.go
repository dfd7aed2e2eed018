package server

import (
	"fmt"
	"time"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine"
	"autoref-server/pkg/api"
	"autoref-server/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// Кадр с 22 игроками и контактами заметно больше команды монитора
const maxFrameSize = 1 << 20

// PhysicsFeed принимает кадры физического сервера и ставит их в очередь судьи.
type PhysicsFeed struct {
	Referee *engine.Referee
	Conn    *websocket.Conn
	log     *logrus.Entry
}

func NewPhysicsFeed(referee *engine.Referee, conn *websocket.Conn) *PhysicsFeed {
	return &PhysicsFeed{
		Referee: referee,
		Conn:    conn,
		log:     logger.Component("physics_feed"),
	}
}

func (f *PhysicsFeed) readPump() {
	defer func() {
		if err := f.Conn.Close(); err != nil {
			f.log.WithError(err).Debug("failed to close websocket connection")
		}
		f.log.Info("Physics feed disconnected")
	}()

	f.Conn.SetReadLimit(maxFrameSize)
	f.log.Info("Physics feed connected")

	for {
		var frame api.PhysicsFrame
		if err := f.Conn.ReadJSON(&frame); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				f.log.WithError(err).Error("WS error")
			}
			return
		}
		if err := frame.Validate(); err != nil {
			f.log.WithError(err).WithField("tick", frame.Tick).Warn("Physics frame rejected")
			continue
		}
		snap, err := FrameToSnapshot(frame)
		if err != nil {
			f.log.WithError(err).WithField("tick", frame.Tick).Warn("Physics frame rejected")
			continue
		}
		_ = f.Referee.SubmitSnapshot(snap)

		select {
		case <-f.Referee.Done():
			_ = f.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, "match finished"),
				time.Now().Add(writeWait))
			return
		default:
		}
	}
}

// FrameToSnapshot переводит кадр с провода в Snapshot судьи.
func FrameToSnapshot(frame api.PhysicsFrame) (*domain.Snapshot, error) {
	snap := &domain.Snapshot{
		Tick: frame.Tick,
		Time: frame.Time,
		Ball: domain.BallFrame{
			Pos: toVec3(frame.Ball.Pos),
			Vel: toVec3(frame.Ball.Vel),
		},
		Players: make([]domain.PlayerFrame, 0, len(frame.Players)),
	}

	for _, p := range frame.Players {
		id, err := toPlayerID(api.PlayerRef{Team: p.Team, Unum: p.Unum})
		if err != nil {
			return nil, err
		}
		snap.Players = append(snap.Players, domain.PlayerFrame{
			ID:        id,
			Goalie:    p.Goalie,
			RobotType: p.RobotType,
			Pos:       toVec3(p.Pos),
			Vel:       toVec3(p.Vel),
			Yaw:       p.Yaw,
			Posture:   domain.ParsePosture(p.Posture),
		})
	}

	for _, c := range frame.Contacts {
		a, err := toPlayerID(c.A)
		if err != nil {
			return nil, err
		}
		b, err := toPlayerID(c.B)
		if err != nil {
			return nil, err
		}
		snap.Contacts = append(snap.Contacts, domain.Contact{A: a, B: b})
	}

	for _, ref := range frame.BallContacts {
		id, err := toPlayerID(ref)
		if err != nil {
			return nil, err
		}
		snap.BallContacts = append(snap.BallContacts, id)
	}

	for _, g := range frame.GoalContacts {
		side := domain.ParseSide(g)
		if side == domain.SideNone {
			return nil, fmt.Errorf("%w: goal contact %q", domain.ErrBadSnapshot, g)
		}
		snap.GoalContacts = append(snap.GoalContacts, side)
	}
	return snap, nil
}

func toPlayerID(ref api.PlayerRef) (domain.PlayerID, error) {
	side := domain.ParseSide(ref.Team)
	if side == domain.SideNone {
		return domain.NoPlayer, fmt.Errorf("%w: team %q", domain.ErrBadSnapshot, ref.Team)
	}
	return domain.PlayerID{Team: side, Unum: ref.Unum}, nil
}

func toVec3(v api.Vec) domain.Vec3 {
	return domain.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}
