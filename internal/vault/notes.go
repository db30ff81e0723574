package vault

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	neturl "net/url"
	"sort"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// RecentNotesLimit ограничивает количество заметок в выдаче
const RecentNotesLimit = 5

// Note представляет заметку из внешнего хранилища
type Note struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	LastModified time.Time `json:"last_modified"`
	Tags         []string  `json:"tags"`
}

// NotesClient reads markdown notes from the provider's drive API with a
// delegated user access token.
type NotesClient struct {
	logger     *slog.Logger
	baseURL    string
	httpClient *http.Client
}

// NewNotesClient creates a drive client for the given API base URL
func NewNotesClient(logger *slog.Logger, baseURL string) *NotesClient {
	return &NotesClient{
		logger:     logger,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// driveItem представляет элемент листинга drive API
type driveItem struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	LastModified time.Time       `json:"lastModifiedDateTime"`
	DownloadURL  string          `json:"@microsoft.graph.downloadUrl"`
	Folder       json.RawMessage `json:"folder"`
	File         json.RawMessage `json:"file"`
}

// StructureEntry описывает элемент верхнего уровня хранилища заметок
type StructureEntry struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"` // "folder" или "file"
	Path         string    `json:"path"`
	LastModified time.Time `json:"last_modified"`
}

// Structure lists the top level of the vault folder: folders first, then
// files, both sorted by name. The service folder .obsidian is excluded.
func (c *NotesClient) Structure(ctx context.Context, accessToken, folder string) ([]StructureEntry, error) {
	items, err := c.listChildren(ctx, accessToken, folder)
	if err != nil {
		return nil, err
	}

	entries := make([]StructureEntry, 0, len(items))
	for _, item := range items {
		if item.Name == ".obsidian" {
			continue
		}
		// Пакеты и прочие спец-элементы без folder/file facet пропускаем
		if item.Folder == nil && item.File == nil {
			continue
		}

		entryType := "file"
		if item.Folder != nil {
			entryType = "folder"
		}

		entries = append(entries, StructureEntry{
			ID:           item.ID,
			Name:         item.Name,
			Type:         entryType,
			Path:         folder + "/" + item.Name,
			LastModified: item.LastModified,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Type != entries[j].Type {
			return entries[i].Type == "folder"
		}
		return entries[i].Name < entries[j].Name
	})

	return entries, nil
}

// RecentNotes walks the vault folder recursively, collects markdown files,
// and returns the most recently modified ones with their frontmatter tags.
// Subfolder listing failures are skipped; a failure on the vault root is an
// error so the caller can tell a dead token from an empty vault.
func (c *NotesClient) RecentNotes(ctx context.Context, accessToken, folder string) ([]Note, error) {
	files, err := c.collectMarkdown(ctx, accessToken, folder, true)
	if err != nil {
		return nil, err
	}

	// Свежие заметки первыми
	sort.Slice(files, func(i, j int) bool {
		return files[i].LastModified.After(files[j].LastModified)
	})

	if len(files) > RecentNotesLimit {
		files = files[:RecentNotesLimit]
	}

	notes := make([]Note, 0, len(files))
	for _, file := range files {
		tags, err := c.fetchTags(ctx, file.DownloadURL)
		if err != nil {
			// Битый файл не валит весь список
			c.logger.WarnContext(ctx, "failed to read note content",
				slog.String("name", file.Name),
				slog.Any("error", err))
			continue
		}

		notes = append(notes, Note{
			ID:           file.ID,
			Title:        strings.TrimSuffix(file.Name, ".md"),
			LastModified: file.LastModified,
			Tags:         tags,
		})
	}

	return notes, nil
}

// collectMarkdown обходит папку рекурсивно и собирает .md файлы
// Служебная папка .obsidian пропускается
func (c *NotesClient) collectMarkdown(ctx context.Context, accessToken, folder string, root bool) ([]driveItem, error) {
	items, err := c.listChildren(ctx, accessToken, folder)
	if err != nil {
		if root {
			return nil, err
		}
		c.logger.WarnContext(ctx, "failed to list folder, skipping",
			slog.String("folder", folder),
			slog.Any("error", err))
		return nil, nil
	}

	var files []driveItem
	for _, item := range items {
		if item.Name == ".obsidian" {
			continue
		}

		if strings.HasSuffix(item.Name, ".md") {
			files = append(files, item)
			continue
		}

		if item.Folder != nil {
			sub, err := c.collectMarkdown(ctx, accessToken, folder+"/"+item.Name, false)
			if err != nil {
				return nil, err
			}
			files = append(files, sub...)
		}
	}

	return files, nil
}

// listChildren запрашивает содержимое папки через drive API
func (c *NotesClient) listChildren(ctx context.Context, accessToken, folder string) ([]driveItem, error) {
	url := fmt.Sprintf("%s/me/drive/root:/%s:/children", c.baseURL, escapePath(folder))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list folder: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("drive api returned status %d", resp.StatusCode)
	}

	var listing struct {
		Value []driveItem `json:"value"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("failed to decode listing: %w", err)
	}

	return listing.Value, nil
}

// escapePath кодирует каждый сегмент пути отдельно, сохраняя разделители.
// Имена папок с "%", "#" или "?" иначе ломают URL запроса
func escapePath(folder string) string {
	segments := strings.Split(folder, "/")
	for i, segment := range segments {
		segments[i] = neturl.PathEscape(segment)
	}
	return strings.Join(segments, "/")
}

// fetchTags скачивает заметку и достает tags из YAML frontmatter
// Download URL от провайдера уже авторизован, заголовок не нужен
func (c *NotesClient) fetchTags(ctx context.Context, downloadURL string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download note: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("download returned status %d", resp.StatusCode)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}

	return parseFrontmatterTags(string(content)), nil
}

// parseFrontmatterTags разбирает YAML frontmatter между "---" маркерами
// tags могут быть строкой или списком; все остальное игнорируется
func parseFrontmatterTags(content string) []string {
	const marker = "---"

	if !strings.HasPrefix(content, marker+"\n") {
		return nil
	}

	rest := content[len(marker)+1:]
	end := strings.Index(rest, "\n"+marker)
	if end < 0 {
		return nil
	}

	var front struct {
		Tags any `yaml:"tags"`
	}
	if err := yaml.Unmarshal([]byte(rest[:end]), &front); err != nil {
		return nil
	}

	switch v := front.Tags.(type) {
	case string:
		return []string{v}
	case []any:
		tags := make([]string, 0, len(v))
		for _, t := range v {
			if s, ok := t.(string); ok {
				tags = append(tags, s)
			}
		}
		return tags
	}

	return nil
}
