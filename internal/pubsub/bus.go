package pubsub

import "sync"

const defaultBuffer = 32

// Bus — внутрипроцессный pub/sub по топикам. Доставка best-effort,
// at-most-once: без персиста и replay; кто не подписан в момент
// Publish — событие не получит.
type Bus struct {
	mu     sync.RWMutex
	topics map[string]map[*Subscription]struct{} // topic -> set of subscriptions
}

func NewBus() *Bus {
	return &Bus{topics: make(map[string]map[*Subscription]struct{})}
}

type Subscription struct {
	bus   *Bus
	topic string
	ch    chan Event
	once  sync.Once
}

// C — канал событий подписки.
func (s *Subscription) C() <-chan Event { return s.ch }

func (s *Subscription) Topic() string { return s.topic }

// Close снимает подписку и закрывает канал.
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.bus.remove(s)
		close(s.ch)
	})
}

func (b *Bus) Subscribe(topic string) *Subscription {
	sub := &Subscription{
		bus:   b,
		topic: topic,
		ch:    make(chan Event, defaultBuffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	set, ok := b.topics[topic]
	if !ok {
		set = make(map[*Subscription]struct{})
		b.topics[topic] = set
	}
	set[sub] = struct{}{}

	return sub
}

func (b *Bus) remove(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if set, ok := b.topics[s.topic]; ok {
		delete(set, s)
		if len(set) == 0 {
			delete(b.topics, s.topic)
		}
	}
}

// Publish рассылает событие всем текущим подписчикам топика, включая
// сессию публикующего. Неблокирующая отправка: медленный подписчик
// теряет событие, а не тормозит публикацию.
func (b *Bus) Publish(topic string, ev Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.topics[topic] {
		select {
		case sub.ch <- ev:
		default: // переполнен буфер — событие пропущено
		}
	}
}

// Subscribers — текущее число подписчиков топика.
func (b *Bus) Subscribers(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()

	return len(b.topics[topic])
}
