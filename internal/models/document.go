package models

// Document — метаданные загруженного документа.
type Document struct {
	ID              int64  `json:"id"`
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	FileType        string `json:"file_type"`
	ChunksProcessed int    `json:"chunks_processed"`
	TotalChunks     int    `json:"total_chunks"`
	UserID          int64  `json:"user_id"`
	CreatedAt       string `json:"created_at,omitempty"`
	IsShared        bool   `json:"is_shared"`

	// Заполняются только в ответе /documents/shared-with-me.
	PermissionLevel string `json:"permission_level,omitempty"`
	Owner           string `json:"owner,omitempty"`
}

// UploadResult — итог обработки загруженного файла.
type UploadResult struct {
	Message         string `json:"message"`
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	ChunksProcessed int    `json:"chunks_processed"`
	TotalChunks     int    `json:"total_chunks"`
}

// Preview — усечённые метаданные документа для предпросмотра.
type Preview struct {
	DocumentID      string `json:"document_id"`
	Filename        string `json:"filename"`
	CreatedAt       string `json:"created_at,omitempty"`
	FileType        string `json:"file_type"`
	ChunksProcessed int    `json:"chunks_processed"`
	TotalChunks     int    `json:"total_chunks"`
	UserID          int64  `json:"user_id"`
}
