// Package sessions хранит, ответ на какой вопрос ждёт бот от каждого админа.
//
// MemoryTracker живёт в памяти и теряется при рестарте (вопрос остаётся
// принятым без ответа, админ возвращается к нему через /answer).
// RedisTracker переживает рестарт. Выбор: SESSION_STORE.
package sessions

import (
	"context"
	"sync"
)

// MemoryTracker: сессии в памяти. Ключ, ID админа, значение, ID вопроса.
// sync.Map: сессии разных админов не блокируют друг друга.
type MemoryTracker struct {
	armed sync.Map
}

// NewMemoryTracker создаёт пустой трекер.
func NewMemoryTracker() *MemoryTracker {
	return &MemoryTracker{}
}

// Arm ставит админа в ожидание ответа на questionID, перезаписывая прежнее.
func (t *MemoryTracker) Arm(_ context.Context, adminID int64, questionID string) (string, error) {
	prev, loaded := t.armed.Swap(adminID, questionID)
	if !loaded {
		return "", nil
	}
	return prev.(string), nil
}

// Current возвращает вопрос, которого ждём от админа.
func (t *MemoryTracker) Current(_ context.Context, adminID int64) (string, bool, error) {
	v, ok := t.armed.Load(adminID)
	if !ok {
		return "", false, nil
	}
	return v.(string), true, nil
}

// Disarm сбрасывает сессию, только если она всё ещё ждёт questionID.
func (t *MemoryTracker) Disarm(_ context.Context, adminID int64, questionID string) (bool, error) {
	return t.armed.CompareAndDelete(adminID, questionID), nil
}
