// redact — маскирование чувствительных значений в логах.
//
// Логи клиента не должны содержать пароли, токены и полные e-mail:
// хендлеры slog пишут в stdout/файлы, которые могут попасть в баг-репорты.
package redact

import "strings"

// Email маскирует локальную часть адреса, сохраняя домен:
// "foobar@example.com" -> "fo***@example.com". Строки без единственного '@'
// маскируются целиком.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := []rune(parts[0]), parts[1]
	if len(local) > 2 {
		return string(local[:2]) + "***@" + domain
	}

	return "***@" + domain
}

func Token() string    { return "[REDACTED_TOKEN]" }
func Password() string { return "[REDACTED_PASSWORD]" }
