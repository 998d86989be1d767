package models

// Уровни доступа, которые бэкенд принимает при шаринге документа.
const (
	PermissionView  = "view"
	PermissionEdit  = "edit"
	PermissionAdmin = "admin"
)

// ValidPermission сообщает, входит ли уровень в допустимый набор.
func ValidPermission(level string) bool {
	switch level {
	case PermissionView, PermissionEdit, PermissionAdmin:
		return true
	}

	return false
}

// Share — запись о доступе к документу для другого пользователя.
type Share struct {
	ID              int64  `json:"id"`
	DocumentID      int64  `json:"document_id"`
	OwnerID         int64  `json:"owner_id"`
	SharedWithID    int64  `json:"shared_with_id"`
	PermissionLevel string `json:"permission_level"`
	CreatedAt       string `json:"created_at,omitempty"`
}
