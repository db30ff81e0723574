package api

import "time"

// ConnectResponse представляет URL авторизации внешнего провайдера
type ConnectResponse struct {
	AuthURL string `json:"auth_url"`
}

// VaultStatusResponse представляет состояние подключения внешнего аккаунта
type VaultStatusResponse struct {
	Connected bool `json:"connected"`
}

// DisconnectResponse представляет результат отключения
type DisconnectResponse struct {
	Success bool `json:"success"`
}

// Note представляет заметку из внешнего хранилища
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastModified time.Time `json:"last_modified"`
	Tags         []string  `json:"tags"`
}

// NotesResponse представляет выдачу последних заметок
// NeedsAuth=true значит интеграцию надо (пере)подключить; это не ошибка 5xx
type NotesResponse struct {
	Notes     []Note `json:"notes"`
	NeedsAuth bool   `json:"needs_auth,omitempty"`
	Error     string `json:"error,omitempty"`
}

// StructureEntry представляет элемент верхнего уровня хранилища заметок
type StructureEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
}

// StructureResponse представляет листинг хранилища, папки перед файлами
type StructureResponse struct {
	Structure []StructureEntry `json:"structure"`
	NeedsAuth bool             `json:"needs_auth,omitempty"`
	Error     string           `json:"error,omitempty"`
}
