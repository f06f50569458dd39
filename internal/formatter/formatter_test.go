package formatter

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
	th "github.com/desertthunder/favtunes/internal/testing"
)

func testUser() models.User {
	return models.User{
		ID:    2,
		Name:  "Ana",
		Email: "ana@example.com",
		FavoriteArtists: []models.ArtistRef{
			{CatalogID: "a-queen", Name: "Queen", URL: "https://open.spotify.com/artist/a-queen"},
		},
		FavoriteSongs: []models.SongRef{
			{CatalogID: "t-hello", Title: "Hello, Again", ArtistName: "Adele", URL: "https://open.spotify.com/track/t-hello"},
		},
	}
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(testUser())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		output := string(data)
		if !strings.HasPrefix(output, "Kind,CatalogID,Name,Artist,URL\n") {
			t.Errorf("CSV missing headers, got: %s", output)
		}
		if !strings.Contains(output, "artist,a-queen,Queen,Queen,https://open.spotify.com/artist/a-queen") {
			t.Errorf("CSV missing artist row, got: %s", output)
		}
		if !strings.Contains(output, `song,t-hello,"Hello, Again",Adele`) {
			t.Errorf("CSV should quote titles containing commas, got: %s", output)
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(testUser())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Ana",
			"**Artists**: 1",
			"## Favorite Artists",
			"1. [Queen](https://open.spotify.com/artist/a-queen)",
			"1. Adele - [Hello, Again](https://open.spotify.com/track/t-hello)",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got: %s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown Without Favorites", func(t *testing.T) {
		data, _ := ExportToMarkdown(models.NewUser(1, "Bo", "bo@example.com"))
		if strings.Count(string(data), "_none_") != 2 {
			t.Errorf("expected both sections to be marked empty, got: %s", data)
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(testUser())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "User: Ana <ana@example.com>") {
			t.Errorf("text missing header, got: %s", output)
		}
		if !strings.Contains(output, "1. Adele - Hello, Again") {
			t.Errorf("text missing song, got: %s", output)
		}
	})

	t.Run("Export", func(t *testing.T) {
		t.Run("JSON By Default", func(t *testing.T) {
			data, err := Export(testUser(), "")
			if err != nil {
				t.Fatalf("Export failed: %v", err)
			}
			if !strings.Contains(string(data), `"favorite_artists"`) {
				t.Errorf("expected JSON output, got: %s", data)
			}
		})

		t.Run("Unknown Format", func(t *testing.T) {
			_, err := Export(testUser(), "xml")
			if !errors.Is(err, shared.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
		})
	})
}

func TestWriters(t *testing.T) {
	t.Run("WriteExport", func(t *testing.T) {
		t.Run("WithCustomPath", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "nested", "ana.csv")

			written, err := WriteExport(testUser(), "csv", path)
			if err != nil {
				t.Fatalf("WriteExport failed: %v", err)
			}
			if written != path {
				t.Errorf("expected %s, got %s", path, written)
			}

			th.AssertFileExists(t, path)
			if content := th.MustReadFile(t, path); !strings.Contains(content, "a-queen") {
				t.Errorf("export missing artist, got: %s", content)
			}
		})

		t.Run("Unknown Format Writes Nothing", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "out.xml")
			if _, err := WriteExport(testUser(), "xml", path); err == nil {
				t.Fatal("expected error for unknown format")
			}
		})
	})

	t.Run("DefaultFilename", func(t *testing.T) {
		tests := map[string]string{
			"csv":      "user_2_favorites.csv",
			"markdown": "user_2_favorites.md",
			"txt":      "user_2_favorites.txt",
			"json":     "user_2_favorites.json",
		}
		for format, want := range tests {
			if got := DefaultFilename(testUser(), format); got != want {
				t.Errorf("%s: expected %s, got %s", format, want, got)
			}
		}
	})

	t.Run("WriteManifest", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "manifest.json")
		if err := WriteManifest(map[string]int{"total": 3}, path); err != nil {
			t.Fatalf("WriteManifest failed: %v", err)
		}
		if content := th.MustReadFile(t, path); !strings.Contains(content, `"total": 3`) {
			t.Errorf("unexpected manifest: %s", content)
		}
	})
}
