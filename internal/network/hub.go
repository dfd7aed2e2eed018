package network

import (
	"sync"

	"autoref-server/pkg/api"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

// DefaultQueueSize - размер личного канала подписчика.
const DefaultQueueSize = 100

// Broadcaster занимается только рассылкой событий матча подписчикам (мониторам).
// Отправка никогда не блокирует: медленный подписчик теряет события.
type Broadcaster struct {
	mu sync.RWMutex
	// Мапа: ID монитора -> Личный канал
	subscribers map[string]chan api.MatchEvent
	queueSize   int
	dropped     map[string]int
	log         *logrus.Entry
}

func NewBroadcaster(queueSize int) *Broadcaster {
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	return &Broadcaster{
		subscribers: make(map[string]chan api.MatchEvent),
		queueSize:   queueSize,
		dropped:     make(map[string]int),
		log:         logger.Component("broadcaster"),
	}
}

// Register создает личный канал для монитора
func (b *Broadcaster) Register(clientID string) chan api.MatchEvent {
	b.mu.Lock()
	defer b.mu.Unlock()

	// Если канал был, закрываем
	if old, ok := b.subscribers[clientID]; ok {
		close(old)
	}

	ch := make(chan api.MatchEvent, b.queueSize)
	b.subscribers[clientID] = ch
	b.dropped[clientID] = 0
	return ch
}

// Unregister удаляет подписчика
func (b *Broadcaster) Unregister(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[clientID]; ok {
		close(ch)
		delete(b.subscribers, clientID)
		if n := b.dropped[clientID]; n > 0 {
			b.log.WithFields(logrus.Fields{
				"client":  clientID,
				"dropped": n,
			}).Warn("Subscriber lost events")
		}
		delete(b.dropped, clientID)
	}
}

// SendTo отправляет событие конкретному монитору (Unicast)
func (b *Broadcaster) SendTo(clientID string, ev api.MatchEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subscribers[clientID]; ok {
		b.offer(clientID, ch, ev)
	}
}

// Broadcast отправляет всем мониторам
func (b *Broadcaster) Broadcast(ev api.MatchEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for id, ch := range b.subscribers {
		b.offer(id, ch, ev)
	}
}

func (b *Broadcaster) offer(id string, ch chan api.MatchEvent, ev api.MatchEvent) {
	select {
	case ch <- ev:
	default:
		b.dropped[id]++
	}
}

// HasSubscriber проверяет, подключен ли монитор
func (b *Broadcaster) HasSubscriber(clientID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.subscribers[clientID]
	return ok
}

// SubscriberCount возвращает количество активных подписчиков.
func (b *Broadcaster) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Dropped сколько событий потерял подписчик из-за полной очереди.
func (b *Broadcaster) Dropped(clientID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.dropped[clientID]
}

// Close отключает всех подписчиков (закрывает их каналы).
func (b *Broadcaster) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for id, ch := range b.subscribers {
		close(ch)
		delete(b.subscribers, id)
	}
}
