// store задаёт контракт локального хранилища сессии (Token Store):
// долговечный key/value, переживающий перезапуски процесса и привязанный
// к origin бэкенда. Единственный «отказ» на поверхности операций —
// отсутствие ключа; ошибки ввода-вывода обрабатывает реализация
// (см. store/file), а не вызывающий код.
package store

import "sync"

// Фиксированные ключи сессии. Все три очищаются вместе при logout
// и никогда не остаются частично заполненными после завершённой операции.
const (
	KeyToken        = "token"
	KeyRefreshToken = "refreshToken"
	KeyUser         = "user"
)

// Store — контракт Token Store.
type Store interface {
	// Get возвращает значение и признак его наличия.
	Get(key string) (string, bool)
	// Set сохраняет значение по ключу.
	Set(key, value string)
	// Remove удаляет ключ; отсутствие ключа — no-op.
	Remove(key string)
}

// Memory — хранилище в памяти для тестов и одноразовых сессий.
// Потокобезопасно: менеджер сессии читает состояние из фоновых горутин.
type Memory struct {
	mu sync.RWMutex
	m  map[string]string
}

// NewMemory создаёт пустое in-memory хранилище.
func NewMemory() *Memory {
	return &Memory{m: make(map[string]string)}
}

func (s *Memory) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[key]
	return v, ok
}

func (s *Memory) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[key] = value
}

func (s *Memory) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, key)
}
