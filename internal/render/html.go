package render

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/sohamda/fantasy-football/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.New("wizard.html").ParseFS(templateFS, "templates/wizard.html"))

// Page is the full HTML document: the step view plus session-level state.
type Page struct {
	View       View
	Toasts     []domain.Toast
	Submitting bool
	Completed  bool
}

// HTML writes the page as a complete HTML document.
func HTML(w io.Writer, page Page) error {
	if err := pageTemplate.Execute(w, page); err != nil {
		return fmt.Errorf("failed to render wizard page: %w", err)
	}
	return nil
}
