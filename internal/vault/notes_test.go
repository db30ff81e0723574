package vault

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFrontmatterTags(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{
			name:    "tag list",
			content: "---\ntags:\n  - work\n  - ideas\n---\n# Note",
			want:    []string{"work", "ideas"},
		},
		{
			name:    "inline list",
			content: "---\ntags: [work, ideas]\n---\nbody",
			want:    []string{"work", "ideas"},
		},
		{
			name:    "single string tag",
			content: "---\ntags: work\n---\nbody",
			want:    []string{"work"},
		},
		{
			name:    "no frontmatter",
			content: "# Just a note\ntags: fake",
			want:    nil,
		},
		{
			name:    "unterminated frontmatter",
			content: "---\ntags: work\nno closing marker",
			want:    nil,
		},
		{
			name:    "frontmatter without tags",
			content: "---\ntitle: Hello\n---\nbody",
			want:    nil,
		},
		{
			name:    "broken yaml",
			content: "---\ntags: [unclosed\n---\nbody",
			want:    nil,
		},
		{
			name:    "non-string list entries skipped",
			content: "---\ntags:\n  - work\n  - 42\n---\nbody",
			want:    []string{"work"},
		},
		{
			name:    "empty content",
			content: "",
			want:    nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFrontmatterTags(tt.content))
		})
	}
}

// fakeDrive поднимает listing и download endpoints на одном тестовом сервере
type fakeDrive struct {
	srv *httptest.Server
	// folder path -> JSON листинг (с плейсхолдером {base} для URL сервера)
	listings map[string]string
	// download path -> содержимое файла
	downloads map[string]string
}

func newFakeDrive(t *testing.T) *fakeDrive {
	t.Helper()
	d := &fakeDrive{
		listings:  make(map[string]string),
		downloads: make(map[string]string),
	}

	d.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if content, ok := d.downloads[r.URL.Path]; ok {
			fmt.Fprint(w, content)
			return
		}

		if r.Header.Get("Authorization") != "Bearer test-access-token" {
			http.Error(w, "missing token", http.StatusUnauthorized)
			return
		}

		listing, ok := d.listings[r.URL.Path]
		if !ok {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, listing)
	}))
	t.Cleanup(d.srv.Close)

	return d
}

func (d *fakeDrive) listingPath(folder string) string {
	return "/me/drive/root:/" + folder + ":/children"
}

func driveFile(id, name, modified, downloadURL string) string {
	return fmt.Sprintf(`{"id":%q,"name":%q,"lastModifiedDateTime":%q,"@microsoft.graph.downloadUrl":%q}`,
		id, name, modified, downloadURL)
}

func driveFolder(id, name string) string {
	return fmt.Sprintf(`{"id":%q,"name":%q,"folder":{"childCount":1}}`, id, name)
}

func TestRecentNotes(t *testing.T) {
	d := newFakeDrive(t)

	d.downloads["/dl/standup"] = "---\ntags:\n  - work\n---\n# Standup"
	d.downloads["/dl/ideas"] = "no frontmatter here"
	d.downloads["/dl/nested"] = "---\ntags: archive\n---\nold"

	d.listings[d.listingPath("Vault")] = fmt.Sprintf(`{"value":[
		%s,
		%s,
		%s,
		%s,
		{"id":"f-obsidian","name":".obsidian","folder":{"childCount":9}}
	]}`,
		driveFile("n-standup", "Standup.md", "2026-08-30T10:00:00Z", d.srv.URL+"/dl/standup"),
		driveFile("n-ideas", "Ideas.md", "2026-08-31T12:00:00Z", d.srv.URL+"/dl/ideas"),
		driveFile("n-image", "diagram.png", "2026-08-31T13:00:00Z", d.srv.URL+"/dl/ignored"),
		driveFolder("f-archive", "Archive"),
	)
	d.listings[d.listingPath("Vault/Archive")] = fmt.Sprintf(`{"value":[%s]}`,
		driveFile("n-nested", "Old plan.md", "2026-08-01T09:00:00Z", d.srv.URL+"/dl/nested"))

	client := NewNotesClient(testLogger(), d.srv.URL)

	notes, err := client.RecentNotes(context.Background(), "test-access-token", "Vault")
	require.NoError(t, err)
	require.Len(t, notes, 3)

	// Свежие первыми, вложенная заметка найдена, .png и .obsidian пропущены
	assert.Equal(t, "Ideas", notes[0].Title)
	assert.Equal(t, "Standup", notes[1].Title)
	assert.Equal(t, "Old plan", notes[2].Title)

	assert.Nil(t, notes[0].Tags)
	assert.Equal(t, []string{"work"}, notes[1].Tags)
	assert.Equal(t, []string{"archive"}, notes[2].Tags)

	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), notes[0].LastModified)
}

func TestRecentNotes_LimitsToFive(t *testing.T) {
	d := newFakeDrive(t)

	items := ""
	for i := 1; i <= 7; i++ {
		if items != "" {
			items += ","
		}
		d.downloads[fmt.Sprintf("/dl/n%d", i)] = "body"
		items += driveFile(
			fmt.Sprintf("n%d", i),
			fmt.Sprintf("Note %d.md", i),
			fmt.Sprintf("2026-08-%02dT10:00:00Z", i),
			d.srv.URL+fmt.Sprintf("/dl/n%d", i),
		)
	}
	d.listings[d.listingPath("Vault")] = fmt.Sprintf(`{"value":[%s]}`, items)

	client := NewNotesClient(testLogger(), d.srv.URL)

	notes, err := client.RecentNotes(context.Background(), "test-access-token", "Vault")
	require.NoError(t, err)
	require.Len(t, notes, RecentNotesLimit)

	// Самые свежие из семи
	assert.Equal(t, "Note 7", notes[0].Title)
	assert.Equal(t, "Note 3", notes[4].Title)
}

func TestRecentNotes_RootListingFailure(t *testing.T) {
	d := newFakeDrive(t)
	// Никаких листингов: корень вернет 404

	client := NewNotesClient(testLogger(), d.srv.URL)

	_, err := client.RecentNotes(context.Background(), "test-access-token", "Vault")
	assert.Error(t, err)
}

func TestRecentNotes_SubfolderFailureSkipped(t *testing.T) {
	d := newFakeDrive(t)

	d.downloads["/dl/ok"] = "body"
	d.listings[d.listingPath("Vault")] = fmt.Sprintf(`{"value":[%s,%s]}`,
		driveFile("n-ok", "Ok.md", "2026-08-30T10:00:00Z", d.srv.URL+"/dl/ok"),
		driveFolder("f-broken", "Broken"),
	)
	// Листинг Vault/Broken не настроен - подпапка молча пропускается

	client := NewNotesClient(testLogger(), d.srv.URL)

	notes, err := client.RecentNotes(context.Background(), "test-access-token", "Vault")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Ok", notes[0].Title)
}

func driveFileWithFacet(id, name, modified string) string {
	return fmt.Sprintf(`{"id":%q,"name":%q,"lastModifiedDateTime":%q,"file":{"mimeType":"text/markdown"}}`,
		id, name, modified)
}

func TestStructure(t *testing.T) {
	d := newFakeDrive(t)

	d.listings[d.listingPath("Vault")] = fmt.Sprintf(`{"value":[
		%s,
		%s,
		%s,
		%s,
		{"id":"f-obsidian","name":".obsidian","folder":{"childCount":9}},
		{"id":"x-special","name":"weird-item"}
	]}`,
		driveFileWithFacet("n-readme", "Readme.md", "2026-08-30T10:00:00Z"),
		driveFolder("f-work", "Work"),
		driveFileWithFacet("n-ideas", "Ideas.md", "2026-08-31T12:00:00Z"),
		driveFolder("f-archive", "Archive"),
	)

	client := NewNotesClient(testLogger(), d.srv.URL)

	entries, err := client.Structure(context.Background(), "test-access-token", "Vault")
	require.NoError(t, err)
	require.Len(t, entries, 4)

	// Папки первыми по имени, затем файлы по имени;
	// .obsidian и элементы без folder/file facet исключены
	assert.Equal(t, "Archive", entries[0].Name)
	assert.Equal(t, "folder", entries[0].Type)
	assert.Equal(t, "Work", entries[1].Name)
	assert.Equal(t, "Ideas.md", entries[2].Name)
	assert.Equal(t, "file", entries[2].Type)
	assert.Equal(t, "Readme.md", entries[3].Name)

	assert.Equal(t, "Vault/Archive", entries[0].Path)
	assert.Equal(t, time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC), entries[2].LastModified)
}

func TestStructure_ListingFailure(t *testing.T) {
	d := newFakeDrive(t)

	client := NewNotesClient(testLogger(), d.srv.URL)

	_, err := client.Structure(context.Background(), "test-access-token", "Vault")
	assert.Error(t, err)
}

func TestListChildren_EscapesFolderSegments(t *testing.T) {
	d := newFakeDrive(t)

	// Имя папки с "#" без экранирования обрезало бы путь запроса
	d.listings[d.listingPath("My Vault #1")] = fmt.Sprintf(`{"value":[%s]}`,
		driveFileWithFacet("n-1", "Plan.md", "2026-08-30T10:00:00Z"))

	client := NewNotesClient(testLogger(), d.srv.URL)

	entries, err := client.Structure(context.Background(), "test-access-token", "My Vault #1")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "Plan.md", entries[0].Name)
}

func TestRecentNotes_UnreadableNoteSkipped(t *testing.T) {
	d := newFakeDrive(t)

	d.downloads["/dl/good"] = "body"
	d.listings[d.listingPath("Vault")] = fmt.Sprintf(`{"value":[%s,%s]}`,
		driveFile("n-good", "Good.md", "2026-08-30T10:00:00Z", d.srv.URL+"/dl/good"),
		driveFile("n-bad", "Bad.md", "2026-08-31T10:00:00Z", d.srv.URL+"/dl/missing"),
	)

	client := NewNotesClient(testLogger(), d.srv.URL)

	notes, err := client.RecentNotes(context.Background(), "test-access-token", "Vault")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Good", notes[0].Title)
}
