package engine

import (
	"autoref-server/internal/domain"
	"autoref-server/internal/params"
	"autoref-server/pkg/api"
	"autoref-server/pkg/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Sink - получатель событий матча (network.Broadcaster).
// Отправка не должна блокировать цикл судьи.
type Sink interface {
	Broadcast(ev api.MatchEvent)
	SendTo(clientID string, ev api.MatchEvent)
}

// DecisionPublisher превращает результат тика в события для мониторов.
// Ничего не решает: только форматирует то, что решил PhaseController.
type DecisionPublisher struct {
	matchID string
	params  params.ParameterSet
	sink    Sink
	log     *logrus.Entry
}

func NewDecisionPublisher(matchID string, ps params.ParameterSet, sink Sink) *DecisionPublisher {
	return &DecisionPublisher{
		matchID: matchID,
		params:  ps,
		sink:    sink,
		log: logger.Log.WithFields(logrus.Fields{
			"component": "publisher",
			"match_id":  matchID,
		}),
	}
}

// Events события тика в порядке: фазы, решения, счет, нарушения, перестановки.
func (p *DecisionPublisher) Events(res TickResult) []api.MatchEvent {
	var events []api.MatchEvent

	for _, tr := range res.Transitions {
		ev := p.newEvent(api.EventPhase, res)
		ev.Phase = tr.To.String()
		events = append(events, ev)
	}

	for _, d := range res.Decisions {
		ev := p.newEvent(api.EventDecision, res)
		ev.Tick = d.Tick
		ev.Time = d.Time
		ev.Decision = decisionView(d)
		if p.params.LabelMessages {
			ev.Label = d.Label()
		}
		events = append(events, ev)
	}

	if p.params.ReportScore && res.ScoreChanged {
		ev := p.newEvent(api.EventScore, res)
		ev.Score = &api.ScoreView{Left: res.Score.Left, Right: res.Score.Right}
		events = append(events, ev)
	}

	for _, v := range res.Violations {
		ev := p.newEvent(api.EventViolation, res)
		ev.Time = v.Time
		ev.Violation = violationView(v)
		events = append(events, ev)
	}

	for _, r := range res.Relocations {
		ev := p.newEvent(api.EventRelocation, res)
		ev.Relocation = &api.RelocationView{
			Player: playerRef(r.Player),
			Pos:    vec(r.Pos),
			Yaw:    r.Yaw,
			Reason: relocationReason(r.Reason),
		}
		events = append(events, ev)
	}
	return events
}

// Publish рассылает события тика всем мониторам, ошибки команд - отправителю.
func (p *DecisionPublisher) Publish(res TickResult) {
	if p.sink == nil {
		return
	}
	events := p.Events(res)
	for _, ev := range events {
		p.sink.Broadcast(ev)
	}

	for _, c := range res.Commands {
		if c.Err == nil || c.Command.Source == "" {
			continue
		}
		ev := p.newEvent(api.EventError, res)
		ev.Message = c.Err.Error()
		p.sink.SendTo(c.Command.Source, ev)
	}

	if len(events) > 0 {
		p.log.WithFields(logrus.Fields{
			"tick":   res.Tick,
			"events": len(events),
		}).Debug("Tick events published")
	}
}

func (p *DecisionPublisher) newEvent(typ string, res TickResult) api.MatchEvent {
	return api.MatchEvent{
		ID:      uuid.NewString(),
		MatchID: p.matchID,
		Type:    typ,
		Tick:    res.Tick,
		Time:    res.Time,
		Phase:   res.Phase.String(),
	}
}

func decisionView(d domain.Decision) *api.DecisionView {
	view := &api.DecisionView{
		Kind:  d.Kind.String(),
		Pos:   vec(d.Pos),
		Team:  d.Team.String(),
		Pause: d.Pause,
	}
	if d.Cause != domain.ViolationUnknown {
		view.Cause = d.Cause.String()
	}
	return view
}

func violationView(v domain.RuleViolation) *api.ViolationView {
	view := &api.ViolationView{
		Kind:     v.Kind.String(),
		Player:   playerRef(v.Player),
		Pos:      vec(v.Pos),
		Involved: v.Involved,
		Limit:    v.Limit,
	}
	if !v.Victim.IsZero() {
		victim := playerRef(v.Victim)
		view.Victim = &victim
	}
	if v.Decision != nil {
		view.Decision = v.Decision.Kind.String()
	}
	return view
}

// relocationReason: перестановка без нарушения - команда тренера.
func relocationReason(k domain.ViolationKind) string {
	if k == domain.ViolationUnknown {
		return "BEAM"
	}
	return k.String()
}

func playerRef(id domain.PlayerID) api.PlayerRef {
	return api.PlayerRef{Team: id.Team.String(), Unum: id.Unum}
}

func vec(v domain.Vec3) api.Vec {
	return api.Vec{X: v.X, Y: v.Y, Z: v.Z}
}
