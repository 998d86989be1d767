package store

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// Тесты in-memory Token Store.
//
// Покрытие:
//   - Set/Get/Remove round-trip;
//   - конкурентный доступ: чтения сессии из фоновых горутин
//     одновременно с logout (ловится детектором гонок).

func TestMemory_RoundTrip(t *testing.T) {
	t.Parallel()

	s := NewMemory()

	_, ok := s.Get(KeyToken)
	require.False(t, ok)

	s.Set(KeyToken, "T")
	v, ok := s.Get(KeyToken)
	require.True(t, ok)
	require.Equal(t, "T", v)

	s.Remove(KeyToken)
	_, ok = s.Get(KeyToken)
	require.False(t, ok)
}

func TestMemory_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s := NewMemory()
	s.Set(KeyToken, "T")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Get(KeyRefreshToken)
				s.Set(KeyToken, "T2")
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Remove(KeyToken)
				s.Set(KeyRefreshToken, "R")
			}
		}()
	}
	wg.Wait()

	v, ok := s.Get(KeyRefreshToken)
	require.True(t, ok)
	require.Equal(t, "R", v)
}
