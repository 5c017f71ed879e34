// Package render turns profile stats into the text block written to a README
// and splices that block between two marker comments of an existing document.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/template"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/naka-gawa/profile-stats/internal/domain"
)

// Markers delimiting the stats block when none are configured.
const (
	DefaultStartMarker = "<!-- PROFILE-STATS:START -->"
	DefaultEndMarker   = "<!-- PROFILE-STATS:END -->"
)

// ErrMarkersNotFound is returned when a document lacks a well-formed marker pair.
var ErrMarkersNotFound = errors.New("stats markers not found")

const statsTemplate = `### GitHub stats of {{ .User }}

| | |
|---|---|
| Total stars | {{ count .Counts.Stars }} |
| Total commits | {{ count .Counts.Commits }} |
| Pull requests | {{ count .Counts.PullRequests }} |
| Issues | {{ count .Counts.Issues }} |
| Contributed to | {{ count .Counts.ContributedTo }} |
| Followers | {{ count .Counts.Followers }} |
| Contributions (last year) | {{ count .Activity.TotalContributions }} |
| Daily average | {{ printf "%.2f" .Activity.DailyAverage }} |
| Current streak | {{ days .Streak.CurrentStreak }} |
| Longest streak | {{ days .Streak.LongestStreak }} |
| Active days | {{ count .Streak.ActiveDays }} |

#### Most used languages

{{ range .Languages -}}
{{ .Rank }}. {{ .Name }} {{ printf "%.1f" .Percentage }}%
{{ else -}}
No language data.
{{ end }}
<sub>Updated {{ .GeneratedAt.Format "2006-01-02" }}</sub>`

var tmpl = template.Must(template.New("stats").Funcs(template.FuncMap{
	"count": func(n int) string { return humanize.Comma(int64(n)) },
	"days":  func(n int) string { return english.Plural(n, "day", "") },
}).Parse(statsTemplate))

// Render writes the stats block for s to w.
func Render(w io.Writer, s *domain.ProfileStats) error {
	if err := tmpl.Execute(w, s); err != nil {
		return fmt.Errorf("failed to render stats: %w", err)
	}
	return nil
}

// Patch replaces whatever lies between the start and end markers of doc with block.
// The markers themselves are kept.
func Patch(doc, block, startMarker, endMarker string) (string, error) {
	start := strings.Index(doc, startMarker)
	if start < 0 {
		return "", fmt.Errorf("%w: missing %q", ErrMarkersNotFound, startMarker)
	}
	contentStart := start + len(startMarker)
	end := strings.Index(doc[contentStart:], endMarker)
	if end < 0 {
		return "", fmt.Errorf("%w: missing %q after %q", ErrMarkersNotFound, endMarker, startMarker)
	}
	end += contentStart

	var b strings.Builder
	b.WriteString(doc[:contentStart])
	b.WriteString("\n")
	b.WriteString(strings.TrimSpace(block))
	b.WriteString("\n")
	b.WriteString(doc[end:])
	return b.String(), nil
}

// PatchFile renders s and splices it into the file at path. The file is only
// rewritten when its content changes; the returned bool reports whether it did.
func PatchFile(path string, s *domain.ProfileStats, startMarker, endMarker string) (bool, error) {
	original, err := os.ReadFile(path)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var block bytes.Buffer
	if err := Render(&block, s); err != nil {
		return false, err
	}
	patched, err := Patch(string(original), block.String(), startMarker, endMarker)
	if err != nil {
		return false, fmt.Errorf("failed to patch %s: %w", path, err)
	}
	if patched == string(original) {
		return false, nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return false, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(patched), info.Mode().Perm()); err != nil {
		return false, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return true, nil
}
