package bot

import "sync"

// serializer выполняет задачи одного собеседника строго по очереди,
// а задачи разных собеседников параллельно.
type serializer struct {
	mu     sync.Mutex
	queues map[int64][]func() // ключ есть в map, пока работает воркер
}

func newSerializer() *serializer {
	return &serializer{queues: make(map[int64][]func())}
}

// Enqueue ставит задачу в очередь ключа и запускает воркер, если его нет.
func (s *serializer) Enqueue(key int64, task func()) {
	s.mu.Lock()
	q, running := s.queues[key]
	s.queues[key] = append(q, task)
	s.mu.Unlock()

	if !running {
		go s.drain(key)
	}
}

func (s *serializer) drain(key int64) {
	for {
		s.mu.Lock()
		q := s.queues[key]
		if len(q) == 0 {
			delete(s.queues, key)
			s.mu.Unlock()
			return
		}
		task := q[0]
		s.queues[key] = q[1:]
		s.mu.Unlock()

		task()
	}
}
