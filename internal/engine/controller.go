package engine

import (
	"fmt"
	"math/rand"
	"sync/atomic"

	"autoref-server/internal/domain"
	"autoref-server/internal/engine/handlers"
	"autoref-server/internal/engine/handlers/trainer"
	"autoref-server/internal/params"
	"autoref-server/internal/systems"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// PhaseController - машина состояний матча и бухгалтерия счета.
// Собирает вердикты детекторов, принимает решения и единолично меняет Match.
// Не потокобезопасен: Advance вызывает один цикл судьи. Abort - из любой горутины.
type PhaseController struct {
	params params.ParameterSet
	field  systems.Field

	tracker    *systems.BallTracker
	positional *systems.PositionalRuleEvaluator
	charging   *systems.ChargingFoulDetector
	standing   *systems.StandingGroundMonitor

	match *domain.Match
	seed  int64
	rng   *rand.Rand // жеребьевка и шум перестановок

	aborted  atomic.Bool
	rejected map[domain.PlayerID]bool // не прошли проверку состава

	handlers map[domain.CommandType]handlers.HandlerFunc
	log      *logrus.Entry
}

// NewPhaseController создает матч в фазе PreKickOff. Сторона первого удара
// определяется сразу: жеребьевкой от seed или параметром KickOffSide.
func NewPhaseController(matchID string, ps params.ParameterSet, seed int64) *PhaseController {
	c := &PhaseController{
		params:     ps,
		field:      systems.NewField(ps),
		tracker:    systems.NewBallTracker(ps),
		positional: systems.NewPositionalRuleEvaluator(ps),
		charging:   systems.NewChargingFoulDetector(ps),
		standing:   systems.NewStandingGroundMonitor(ps),
		match:      domain.NewMatch(matchID),
		seed:       seed,
		rng:        rand.New(rand.NewSource(seed)),
		rejected:   make(map[domain.PlayerID]bool),
		log: logger.Log.WithFields(logrus.Fields{
			"component": "phase_controller",
			"match_id":  matchID,
		}),
	}
	c.match.FirstKickOff = c.firstKickOffSide()
	c.registerHandlers()

	c.log.WithFields(logrus.Fields{
		"seed":           seed,
		"first_kick_off": c.match.FirstKickOff.String(),
		"coin_toss":      ps.CoinTossForKickOff,
	}).Info("Match created")
	return c
}

func (c *PhaseController) registerHandlers() {
	c.handlers = map[domain.CommandType]handlers.HandlerFunc{
		domain.CommandKickOff:  handlers.WithPayload(trainer.HandleKickOff),
		domain.CommandRestart:  handlers.WithPayload(trainer.HandleRestart),
		domain.CommandDropBall: handlers.WithPayload(trainer.HandleDropBall),
		domain.CommandBeam:     handlers.WithPayload(trainer.HandleBeam),
		domain.CommandAbort:    handlers.WithEmptyPayload(trainer.HandleAbort),
	}
}

func (c *PhaseController) firstKickOffSide() domain.Side {
	if c.params.CoinTossForKickOff {
		if c.rng.Intn(2) == 0 {
			return domain.SideLeft
		}
		return domain.SideRight
	}
	if c.params.KickOffSide == domain.SideRight {
		return domain.SideRight
	}
	return domain.SideLeft
}

// Params набор параметров матча.
func (c *PhaseController) Params() params.ParameterSet { return c.params }

// Seed зерно жеребьевки и шума.
func (c *PhaseController) Seed() int64 { return c.seed }

// State копия закоммиченного состояния матча.
func (c *PhaseController) State() *domain.Match { return c.match.Clone() }

// Abort помечает матч прерванным. Текущий или следующий тик ничего не коммитит,
// фаза становится Aborted.
func (c *PhaseController) Abort() {
	c.aborted.Store(true)
}

// CommitAbort переводит матч в Aborted немедленно. Вызывается владельцем цикла.
func (c *PhaseController) CommitAbort() TickResult {
	c.aborted.Store(true)
	res := c.emptyResult()
	prev := c.match.Phase
	if prev == domain.PhaseAborted {
		return res
	}

	m := c.match.Clone()
	m.Phase = domain.PhaseAborted
	m.Restart = nil
	c.match = m

	res.Applied = true
	res.Phase = m.Phase
	res.Transitions = []PhaseTransition{{From: prev, To: domain.PhaseAborted}}
	c.log.WithFields(logrus.Fields{
		"from":  prev.String(),
		"score": fmt.Sprintf("%d:%d", m.Score.Left, m.Score.Right),
	}).Warn("Match aborted")
	return res
}

func (c *PhaseController) emptyResult() TickResult {
	return TickResult{
		Tick:  c.match.Tick,
		Time:  c.match.Elapsed,
		Phase: c.match.Phase,
		Score: c.match.Score,
	}
}

// Advance - один тик: команды тренера из очереди, затем кадр физики.
// Битый кадр или кадр без продвижения времени - тик без изменений.
// Тик считается на копии матча и коммитится целиком.
func (c *PhaseController) Advance(snap *domain.Snapshot, cmds []domain.InternalCommand) TickResult {
	res := c.emptyResult()

	if c.match.Phase == domain.PhaseAborted {
		res.Skipped = fmt.Errorf("%w: match is aborted", ErrStateInconsistency)
		return res
	}
	if c.aborted.Load() {
		return c.CommitAbort()
	}
	if err := snap.Validate(); err != nil {
		c.log.WithError(err).Warn("Physics snapshot skipped")
		res.Skipped = err
		return res
	}
	if c.match.Started && snap.Time <= c.match.LastTime {
		res.Skipped = fmt.Errorf("%w: time %.4f does not advance past %.4f",
			domain.ErrBadSnapshot, snap.Time, c.match.LastTime)
		c.log.WithField("tick", snap.Tick).Debug("Physics time did not advance")
		return res
	}

	t := newTick(c, snap, &res)
	t.syncPlayers()
	for _, cmd := range cmds {
		t.applyCommand(cmd)
	}
	t.step()

	if c.aborted.Load() {
		return c.CommitAbort()
	}

	w := t.m
	if w.Score.Left < c.match.Score.Left || w.Score.Right < c.match.Score.Right {
		err := fmt.Errorf("%w: score would decrease from %d:%d to %d:%d", ErrStateInconsistency,
			c.match.Score.Left, c.match.Score.Right, w.Score.Left, w.Score.Right)
		c.log.WithError(err).Error("Tick rejected")
		skipped := c.emptyResult()
		skipped.Skipped = err
		return skipped
	}

	w.LastTime = snap.Time
	w.Started = true
	c.match = w

	res.Applied = true
	res.Tick = w.Tick
	res.Time = w.Elapsed
	res.Phase = w.Phase
	res.Score = w.Score
	return res
}
