// file — файловая реализация Token Store.
//
// Сессия хранится одним JSON-файлом под каталогом состояния, в подкаталоге,
// производном от origin бэкенда: токены разных инсталляций SmartDoc не
// пересекаются. Файл полностью читается при Open и перезаписывается после
// каждой мутации. Ошибки записи не прерывают операцию (контракт Store их
// не предусматривает) — они логируются, а актуальное состояние остаётся
// в памяти до следующей успешной записи.
package file

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const sessionFile = "session.json"

// Store — файловый Token Store. Безопасен для конкурентного использования.
type Store struct {
	path string
	log  *slog.Logger

	mu   sync.Mutex
	data map[string]string
}

// Open читает (или создаёт пустым) хранилище сессии для данного origin.
// Ошибка возвращается только при нечитаемом существующем файле или битом JSON:
// отсутствие файла — нормальный первый запуск.
func Open(stateDir, origin string, log *slog.Logger) (*Store, error) {
	const op = "store.file.Open"

	if log == nil {
		log = slog.Default()
	}

	s := &Store{
		path: filepath.Join(stateDir, originDir(origin), sessionFile),
		log:  log,
		data: make(map[string]string),
	}

	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}

		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("%s: corrupt session file %q: %w", op, s.path, err)
	}

	return s, nil
}

// Path возвращает путь файла сессии.
func (s *Store) Path() string { return s.path }

func (s *Store) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[key]
	return v, ok
}

func (s *Store) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.data[key] = value
	s.flushLocked()
}

func (s *Store) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[key]; !ok {
		return
	}

	delete(s.data, key)
	s.flushLocked()
}

// flushLocked пишет снимок на диск. Вызывается только под s.mu.
func (s *Store) flushLocked() {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		s.log.Error("session_marshal_failed", slog.String("err", err.Error()))
		return
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.log.Error("session_mkdir_failed",
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
		return
	}

	// Токены — секреты: файл только для владельца.
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		s.log.Error("session_write_failed",
			slog.String("path", s.path),
			slog.String("err", err.Error()),
		)
	}
}

// originDir превращает базовый URL в имя каталога:
// "https://api.example.com:8443" -> "api.example.com_8443".
func originDir(origin string) string {
	origin = strings.TrimSuffix(origin, "/")
	if i := strings.Index(origin, "://"); i >= 0 {
		origin = origin[i+len("://"):]
	}

	var b strings.Builder
	for _, r := range origin {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}

	if b.Len() == 0 {
		return "default"
	}

	return b.String()
}
