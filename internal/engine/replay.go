package engine

import (
	"fmt"

	"autoref-server/internal/domain"
	"autoref-server/internal/params"
)

// Simulate заново прогоняет запись матча через новый PhaseController.
// Тот же seed и те же кадры дают ту же последовательность решений.
func Simulate(session *domain.ReplaySession, ps params.ParameterSet, sink Sink) (*domain.Match, []TickResult, error) {
	if session == nil {
		return nil, nil, fmt.Errorf("simulate: empty session")
	}
	ctrl := NewPhaseController(session.MatchID, ps, session.Seed)
	publisher := NewDecisionPublisher(session.MatchID, ps, sink)

	results := make([]TickResult, 0, len(session.Frames))
	for i := range session.Frames {
		frame := session.Frames[i]
		var res TickResult
		if frame.Abort {
			res = ctrl.CommitAbort()
		} else {
			res = ctrl.Advance(&frame.Snapshot, frame.Commands)
		}
		publisher.Publish(res)
		results = append(results, res)
		if res.Phase == domain.PhaseAborted || res.Quit {
			break
		}
	}
	return ctrl.State(), results, nil
}
