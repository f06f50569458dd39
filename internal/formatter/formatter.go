// package formatter exports a user's favorites to various formats (CSV, Markdown, plain text, JSON)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/desertthunder/favtunes/internal/models"
	"github.com/desertthunder/favtunes/internal/shared"
)

// Formats lists the supported export formats.
var Formats = []string{"json", "csv", "markdown", "txt"}

// ExportToCSV converts a user's favorites to CSV with columns: Kind, CatalogID, Name, Artist, URL
func ExportToCSV(user models.User) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Kind", "CatalogID", "Name", "Artist", "URL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, a := range user.FavoriteArtists {
		if err := writer.Write([]string{"artist", a.CatalogID, a.Name, a.Name, a.URL}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, s := range user.FavoriteSongs {
		if err := writer.Write([]string{"song", s.CatalogID, s.Title, s.ArtistName, s.URL}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a user's favorites to a Markdown document with one section per list
func ExportToMarkdown(user models.User) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", user.Name)
	fmt.Fprintf(&buf, "**Email**: %s\n", user.Email)
	fmt.Fprintf(&buf, "**Artists**: %d\n", len(user.FavoriteArtists))
	fmt.Fprintf(&buf, "**Songs**: %d\n\n", len(user.FavoriteSongs))

	buf.WriteString("## Favorite Artists\n\n")
	if len(user.FavoriteArtists) == 0 {
		buf.WriteString("_none_\n")
	}
	for i, a := range user.FavoriteArtists {
		fmt.Fprintf(&buf, "%d. [%s](%s)\n", i+1, a.Name, a.URL)
	}

	buf.WriteString("\n## Favorite Songs\n\n")
	if len(user.FavoriteSongs) == 0 {
		buf.WriteString("_none_\n")
	}
	for i, s := range user.FavoriteSongs {
		fmt.Fprintf(&buf, "%d. %s - [%s](%s)\n", i+1, s.ArtistName, s.Title, s.URL)
	}

	return buf.Bytes(), nil
}

// ExportToText converts a user's favorites to plain text
func ExportToText(user models.User) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "User: %s <%s>\n", user.Name, user.Email)
	fmt.Fprintf(&buf, "Artists: %d\n", len(user.FavoriteArtists))
	for i, a := range user.FavoriteArtists {
		fmt.Fprintf(&buf, "%d. %s\n", i+1, a.Name)
	}

	fmt.Fprintf(&buf, "\nSongs: %d\n", len(user.FavoriteSongs))
	for i, s := range user.FavoriteSongs {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, s.ArtistName, s.Title)
	}

	return buf.Bytes(), nil
}

// Export renders user in the named format. An empty format means json.
func Export(user models.User, format string) ([]byte, error) {
	switch format {
	case "csv":
		return ExportToCSV(user)
	case "markdown", "md":
		return ExportToMarkdown(user)
	case "txt", "text":
		return ExportToText(user)
	case "json", "":
		return shared.MarshalJSON(user, true)
	default:
		return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidInput, format)
	}
}

// Extension returns the file extension used for format.
func Extension(format string) string {
	switch format {
	case "markdown", "md":
		return "md"
	case "txt", "text":
		return "txt"
	case "csv":
		return "csv"
	default:
		return "json"
	}
}

// DefaultFilename is user_{id}_favorites.{ext}
func DefaultFilename(user models.User, format string) string {
	return "user_" + strconv.Itoa(user.ID) + "_favorites." + Extension(format)
}

// WriteExport renders user and writes it to path.
//
// Defaults to [DefaultFilename] in the working directory when path is empty.
func WriteExport(user models.User, format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(user, format)
	}

	data, err := Export(user, format)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	return path, nil
}

// WriteManifest writes v as indented JSON to path.
func WriteManifest(v any, path string) error {
	data, err := shared.MarshalJSON(v, true)
	if err != nil {
		return fmt.Errorf("failed to encode manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}
	return nil
}
