package agent

import (
	"sync"

	"autoref-server/internal/network"
	"autoref-server/pkg/api"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// MatchLogID - под этим ID журнал подписан в хабе.
const MatchLogID = "match-log"

// MatchLog - встроенный подписчик хаба, ведет журнал матча.
// Получает те же события, что и мониторы, и пишет их в лог сервера.
//
// Жизненный цикл:
//  1. NewMatchLog -> регистрация в хабе, получение личного канала (Inbox).
//  2. Run -> запуск в отдельной горутине, читает Inbox до закрытия канала.
//  3. Summary -> итоги матча для финального лога.
type MatchLog struct {
	Hub   *network.Broadcaster
	Inbox chan api.MatchEvent

	mu      sync.Mutex
	summary Summary
	log     *logrus.Entry
}

// Summary - итоги матча по журналу.
type Summary struct {
	Phase      string
	Score      api.ScoreView
	Decisions  map[string]int // kind -> сколько раз
	Violations map[string]int
	Events     int
}

func NewMatchLog(hub *network.Broadcaster) *MatchLog {
	return &MatchLog{
		Hub:   hub,
		Inbox: hub.Register(MatchLogID),
		summary: Summary{
			Decisions:  make(map[string]int),
			Violations: make(map[string]int),
		},
		log: logger.Component("match_log"),
	}
}

// Run читает события, пока хаб не закроет канал. Должен быть запущен в горутине.
func (l *MatchLog) Run() {
	defer l.Hub.Unregister(MatchLogID)

	for ev := range l.Inbox {
		l.record(ev)
	}
	l.log.Debug("Match log closed")
}

func (l *MatchLog) record(ev api.MatchEvent) {
	l.mu.Lock()
	l.summary.Events++
	l.summary.Phase = ev.Phase
	if ev.Score != nil {
		l.summary.Score = *ev.Score
	}
	l.mu.Unlock()

	entry := l.log.WithFields(logrus.Fields{
		"tick":  ev.Tick,
		"time":  ev.Time,
		"phase": ev.Phase,
	})

	switch ev.Type {
	case api.EventDecision:
		if ev.Decision == nil {
			return
		}
		l.count(l.summary.Decisions, ev.Decision.Kind)
		entry.WithFields(logrus.Fields{
			"kind":  ev.Decision.Kind,
			"team":  ev.Decision.Team,
			"x":     ev.Decision.Pos.X,
			"y":     ev.Decision.Pos.Y,
			"label": ev.Label,
		}).Info("Decision")

	case api.EventViolation:
		if ev.Violation == nil {
			return
		}
		l.count(l.summary.Violations, ev.Violation.Kind)
		entry.WithFields(logrus.Fields{
			"kind":   ev.Violation.Kind,
			"player": ev.Violation.Player,
		}).Info("Violation")

	case api.EventScore:
		if ev.Score != nil {
			entry.WithField("score", *ev.Score).Info("Score changed")
		}

	case api.EventRelocation:
		if ev.Relocation != nil {
			entry.WithFields(logrus.Fields{
				"player": ev.Relocation.Player,
				"reason": ev.Relocation.Reason,
			}).Debug("Relocation")
		}

	default:
		entry.WithField("type", ev.Type).Debug("Event")
	}
}

func (l *MatchLog) count(m map[string]int, key string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	m[key]++
}

// Summary копия итогов на текущий момент.
func (l *MatchLog) Summary() Summary {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := l.summary
	out.Decisions = make(map[string]int, len(l.summary.Decisions))
	for k, v := range l.summary.Decisions {
		out.Decisions[k] = v
	}
	out.Violations = make(map[string]int, len(l.summary.Violations))
	for k, v := range l.summary.Violations {
		out.Violations[k] = v
	}
	return out
}
