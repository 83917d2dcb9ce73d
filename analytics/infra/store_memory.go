package infra

import (
	"context"
	"strconv"
	"sync"
	"time"
)

// MemoryStore é uma implementação de domain.Store em memória.
//
// Útil para testes e desenvolvimento sem Redis. A expiração é preguiçosa:
// uma chave vencida some no próximo acesso, não em background.
type MemoryStore struct {
	mu      sync.Mutex
	zsets   map[string]map[string]int64
	hashes  map[string]map[string]int64
	expires map[string]time.Time

	// Now permite controlar o relógio de expiração nos testes.
	// Nil usa time.Now.
	Now func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		zsets:   make(map[string]map[string]int64),
		hashes:  make(map[string]map[string]int64),
		expires: make(map[string]time.Time),
	}
}

func (s *MemoryStore) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// purge descarta a chave se o TTL venceu. Chamar com o mutex em mãos.
func (s *MemoryStore) purge(key string) {
	at, ok := s.expires[key]
	if !ok || s.now().Before(at) {
		return
	}
	delete(s.zsets, key)
	delete(s.hashes, key)
	delete(s.expires, key)
}

func (s *MemoryStore) AddWithScore(_ context.Context, key, member string, score int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(key)

	set, ok := s.zsets[key]
	if !ok {
		set = make(map[string]int64)
		s.zsets[key] = set
	}
	set[member] = score
	return nil
}

func (s *MemoryStore) RemoveByScoreBelow(_ context.Context, key string, min int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(key)

	for member, score := range s.zsets[key] {
		if score < min {
			delete(s.zsets[key], member)
		}
	}
	return nil
}

func (s *MemoryStore) CountByScoreFrom(_ context.Context, key string, min int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(key)

	var n int64
	for _, score := range s.zsets[key] {
		if score >= min {
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) IncrementField(_ context.Context, key, field string, delta int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(key)

	h, ok := s.hashes[key]
	if !ok {
		h = make(map[string]int64)
		s.hashes[key] = h
	}
	h[field] += delta
	return nil
}

func (s *MemoryStore) Expire(_ context.Context, key string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(key)

	_, isZSet := s.zsets[key]
	_, isHash := s.hashes[key]
	if !isZSet && !isHash {
		// como no Redis: EXPIRE em chave inexistente não faz nada
		return nil
	}
	s.expires[key] = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) Fields(_ context.Context, key string) (map[string]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.purge(key)

	out := make(map[string]string, len(s.hashes[key]))
	for field, count := range s.hashes[key] {
		out[field] = strconv.FormatInt(count, 10)
	}
	return out, nil
}
