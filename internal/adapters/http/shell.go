package http

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/gofiber/fiber/v2"

	"github.com/samirrijal/fifteenmap/internal/core/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// shellPage holds the texts of the address form.
type shellPage struct {
	Title       string
	Description string
	Example     string
	Spinner     string
	MapWidth    int
}

var defaultShell = shellPage{
	Title: "The 15-Minute-Map 🗺️",
	Description: "Mapping the 15-minute city: Use this web app to map all local amenities " +
		"you can reach via a 5-/10-/15-minute walk from any address in the world!",
	Example:  "712 Red Bark Lane, Henderson, NV 89011, USA",
	Spinner:  "Getting there at 4.8 km/h...",
	MapWidth: 1000,
}

// ShellHandler serves the address form that drives a session.
func ShellHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return render(c, "shell.html", defaultShell)
	}
}

// renderMapHTML writes doc as a standalone Leaflet page.
func renderMapHTML(c *fiber.Ctx, doc *domain.MapDocument) error {
	return render(c, "map.html", struct{ Doc *domain.MapDocument }{doc})
}

func render(c *fiber.Ctx, name string, data any) error {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return errInternal(c, "render "+name+": "+err.Error())
	}
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
