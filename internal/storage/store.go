// Package storage хранит текущее описание букета для каждого пользователя.
// Состояние живёт в памяти процесса: между перезапусками оно не сохраняется.
package storage

import "sync"

// Store — потокобезопасное хранилище «пользователь → описание букета».
// Записи не вытесняются: карта растёт вместе с числом пользователей.
type Store struct {
	mu       sync.RWMutex
	bouquets map[int64]string
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{bouquets: make(map[int64]string)}
}

// Get возвращает текущее описание букета пользователя.
// Второе значение — false, если анализа ещё не было.
func (s *Store) Get(userID int64) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	desc, ok := s.bouquets[userID]
	return desc, ok
}

// Set запоминает описание букета пользователя, затирая предыдущее.
func (s *Store) Set(userID int64, description string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bouquets[userID] = description
}
