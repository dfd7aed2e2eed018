package systems

import (
	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// StandingGroundMonitor ведет таймеры "не стоит" и "лежит" для каждого игрока.
// Таймеры живут в Player, монитор - единственный, кто их меняет.
type StandingGroundMonitor struct {
	params params.ParameterSet
	log    *logrus.Entry
}

func NewStandingGroundMonitor(ps params.ParameterSet) *StandingGroundMonitor {
	return &StandingGroundMonitor{
		params: ps,
		log:    logger.Log.WithFields(logrus.Fields{"component": "standing_monitor"}),
	}
}

// Limits возвращает пороги (не стоит, лежит) с учетом роли игрока.
func (m *StandingGroundMonitor) Limits(p *domain.Player) (notStanding, grounded float64) {
	if p.Goalie {
		return m.params.GoalieNotStandingMaxTime, m.params.GoalieGroundMaxTime
	}
	return m.params.NotStandingMaxTime, m.params.GroundMaxTime
}

// Update продвигает таймеры на dt и возвращает нарушения.
// Одно нарушение на непрерывный интервал: повторно только после того, как игрок встал.
func (m *StandingGroundMonitor) Update(players []*domain.Player, dt, now float64) []domain.RuleViolation {
	if dt < 0 {
		return nil
	}

	var out []domain.RuleViolation
	for _, p := range players {
		if p.Posture.IsStanding() {
			p.NotStandingDuration = 0
			p.GroundedDuration = 0
			p.NotStandingReported = false
			p.GroundedReported = false
			continue
		}

		p.NotStandingDuration += dt
		if p.Posture.IsOnGround() {
			p.GroundedDuration += dt
		} else {
			p.GroundedDuration = 0
			p.GroundedReported = false
		}

		notStandingLimit, groundLimit := m.Limits(p)

		if p.NotStandingDuration > notStandingLimit && !p.NotStandingReported {
			p.NotStandingReported = true
			out = append(out, domain.RuleViolation{
				Kind:   domain.ViolationNotStanding,
				Player: p.ID,
				Time:   now,
				Pos:    p.Pos,
				Limit:  notStandingLimit,
			})
		}
		if p.GroundedDuration > groundLimit && !p.GroundedReported {
			p.GroundedReported = true
			out = append(out, domain.RuleViolation{
				Kind:   domain.ViolationGrounded,
				Player: p.ID,
				Time:   now,
				Pos:    p.Pos,
				Limit:  groundLimit,
			})
		}
	}

	for _, v := range out {
		m.log.WithFields(logrus.Fields{
			"player":   v.Player.String(),
			"kind":     v.Kind.String(),
			"limit":    v.Limit,
			"position": v.Pos,
		}).Info("Player down too long")
	}
	return out
}
