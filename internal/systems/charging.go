package systems

import (
	"math"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// contactTrack - наблюдение за парой "нападающий -> пострадавший" с начала контакта.
type contactTrack struct {
	start     float64
	lastSeen  float64
	victimPos domain.Vec3
	victimYaw float64
}

type pairKey struct {
	offender domain.PlayerID
	victim   domain.PlayerID
}

// ChargingFoulDetector ищет толчки: быстрый игрок врезается в соперника,
// и тот за окно наблюдения заметно смещается и разворачивается.
// После фола нападающий получает иммунитет на ChargingImmunityTime.
type ChargingFoulDetector struct {
	params params.ParameterSet
	tracks map[pairKey]*contactTrack
	log    *logrus.Entry
}

func NewChargingFoulDetector(ps params.ParameterSet) *ChargingFoulDetector {
	return &ChargingFoulDetector{
		params: ps,
		tracks: make(map[pairKey]*contactTrack),
		log:    logger.Log.WithFields(logrus.Fields{"component": "charging_detector"}),
	}
}

// Update проверяет все контакты тика в обе стороны. Контакты с неизвестными
// игроками пропускаются.
func (d *ChargingFoulDetector) Update(players map[domain.PlayerID]*domain.Player, contacts []domain.Contact, ball domain.Ball, now float64) []domain.RuleViolation {
	if !d.params.UseCharging {
		d.tracks = make(map[pairKey]*contactTrack)
		return nil
	}

	var out []domain.RuleViolation
	for _, c := range contacts {
		a, okA := players[c.A]
		b, okB := players[c.B]
		if !okA || !okB || a.ID.Team == b.ID.Team {
			continue
		}
		// Порядок внутри пары фиксирован, чтобы результат не зависел от порядка в кадре
		first, second := a, b
		if second.ID.Less(first.ID) {
			first, second = second, first
		}
		if v := d.Detect(first, second, ball, now); v != nil {
			out = append(out, *v)
		}
		if v := d.Detect(second, first, ball, now); v != nil {
			out = append(out, *v)
		}
	}
	d.prune(now)
	return out
}

// Detect проверяет, толкнул ли player соперника opponent. Вызывается на тиках,
// где между ними есть контакт. При фоле ставит player иммунитет.
func (d *ChargingFoulDetector) Detect(player, opponent *domain.Player, ball domain.Ball, now float64) *domain.RuleViolation {
	if !d.params.UseCharging || player == nil || opponent == nil {
		return nil
	}

	key := pairKey{offender: player.ID, victim: opponent.ID}
	track, ok := d.tracks[key]
	if !ok || now-track.lastSeen > d.params.ChargingWindow {
		track = &contactTrack{
			start:     now,
			victimPos: opponent.Pos,
			victimYaw: opponent.Yaw,
		}
		d.tracks[key] = track
	}
	track.lastSeen = now

	if now < player.ChargingImmunityUntil {
		return nil
	}
	if now-track.start > d.params.ChargingWindow {
		return nil
	}

	speed := player.Vel.Len2D()
	if speed <= d.params.ChargingMinSpeed {
		return nil
	}
	angle, ok := domain.AngleBetween2D(player.Vel, opponent.Pos.Sub(player.Pos))
	if !ok || angle >= d.params.ChargingMinBallSpeedAngle {
		return nil
	}

	contactPoint := player.Pos.Add(opponent.Pos).Scale(0.5)
	if contactPoint.Dist2D(ball.Pos) > d.params.ChargingMaxBallDist {
		return nil
	}

	deltaDist := opponent.Pos.Dist2D(track.victimPos)
	deltaAng := math.Abs(domain.NormalizeAngle(opponent.Yaw - track.victimYaw))
	// NaN при бесконечном курсе: поворот не измерить, фола нет
	if math.IsNaN(deltaAng) || deltaDist <= d.params.ChargingMinDeltaDist || deltaAng <= d.params.ChargingMinDeltaAng {
		return nil
	}

	player.ChargingImmunityUntil = now + d.params.ChargingImmunityTime
	delete(d.tracks, key)

	d.log.WithFields(logrus.Fields{
		"offender":   player.ID.String(),
		"victim":     opponent.ID.String(),
		"speed":      speed,
		"angle":      angle,
		"delta_dist": deltaDist,
		"delta_ang":  deltaAng,
	}).Info("Charging foul")

	return &domain.RuleViolation{
		Kind:   domain.ViolationCharging,
		Player: player.ID,
		Victim: opponent.ID,
		Time:   now,
		Pos:    opponent.Pos,
		Limit:  d.params.ChargingMinSpeed,
	}
}

func (d *ChargingFoulDetector) prune(now float64) {
	for key, track := range d.tracks {
		if now-track.lastSeen > d.params.ChargingWindow {
			delete(d.tracks, key)
		}
	}
}

// Reset забывает все наблюдаемые контакты (смена тайма, перестановки).
func (d *ChargingFoulDetector) Reset() {
	d.tracks = make(map[pairKey]*contactTrack)
}
