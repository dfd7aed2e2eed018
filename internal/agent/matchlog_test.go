package agent

import (
	"os"
	"testing"

	"autoref-server/internal/network"
	"autoref-server/pkg/api"
	"autoref-server/pkg/logger"

	"github.com/stretchr/testify/assert"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	logger.Init()
	os.Exit(m.Run())
}

func TestMatchLog_SummarizesEvents(t *testing.T) {
	defer goleak.VerifyNone(t)

	hub := network.NewBroadcaster(16)
	ml := NewMatchLog(hub)
	assert.True(t, hub.HasSubscriber(MatchLogID))

	done := make(chan struct{})
	go func() {
		ml.Run()
		close(done)
	}()

	hub.Broadcast(api.MatchEvent{Type: api.EventPhase, Phase: "PLAYING"})
	hub.Broadcast(api.MatchEvent{Type: api.EventDecision, Phase: "PLAYING",
		Decision: &api.DecisionView{Kind: "KICK_OFF", Team: "Left"}})
	hub.Broadcast(api.MatchEvent{Type: api.EventDecision, Phase: "PAUSED",
		Decision: &api.DecisionView{Kind: "GOAL", Team: "Left"}})
	hub.Broadcast(api.MatchEvent{Type: api.EventScore, Phase: "PAUSED",
		Score: &api.ScoreView{Left: 1}})
	hub.Broadcast(api.MatchEvent{Type: api.EventViolation, Phase: "PAUSED",
		Violation: &api.ViolationView{Kind: "GROUNDED", Player: api.PlayerRef{Team: "Right", Unum: 3}}})
	hub.Close()
	<-done

	s := ml.Summary()
	assert.Equal(t, 5, s.Events)
	assert.Equal(t, "PAUSED", s.Phase)
	assert.Equal(t, api.ScoreView{Left: 1}, s.Score)
	assert.Equal(t, map[string]int{"KICK_OFF": 1, "GOAL": 1}, s.Decisions)
	assert.Equal(t, map[string]int{"GROUNDED": 1}, s.Violations)
	assert.False(t, hub.HasSubscriber(MatchLogID))
}
