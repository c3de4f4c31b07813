package templates

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/csvtree/internal/core"
	"github.com/a-h/templ"
	"github.com/google/uuid"
)

const timeLayout = "2006-01-02 15:04:05"

func projectURL(id uuid.UUID) templ.SafeURL {
	return templ.URL("/projects/" + id.String())
}

func documentURL(id uuid.UUID) templ.SafeURL {
	return templ.URL("/api/projects/" + id.String() + "?pretty=1")
}

// summaryLine is the counts sentence under a project heading.
func summaryLine(rec core.ProjectRecord) string {
	s := fmt.Sprintf("%d files in %d folders", rec.Files, rec.Folders)
	if rec.Skipped > 0 {
		s += fmt.Sprintf(", %d rows skipped", rec.Skipped)
	}
	return s + "."
}

// attributeSummary lists attributes as name=value in name order.
func attributeSummary(attrs core.Attributes) string {
	keys := attrs.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+formatValue(attrs[k]))
	}
	return strings.Join(parts, ", ")
}

func formatValue(v core.Value) string {
	switch v := v.(type) {
	case core.Number:
		return v.String()
	case core.Text:
		return fmt.Sprintf("%q", string(v))
	default:
		return ""
	}
}
