// Package web renders the server-side pages from embedded templates.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"time"

	"github.com/boddenberg/revomotors-web/internal/domain"
	"github.com/boddenberg/revomotors-web/internal/session"
)

//go:embed templates
var templateFS embed.FS

// Page names, one per template file.
const (
	PageLanding      = "landing"
	PageLogin        = "login"
	PageRegister     = "register"
	PageDashboard    = "dashboard"
	PageFilters      = "filters"
	PageFilterDelete = "filter_delete"
	PageLead         = "lead"
	PageSettings     = "settings"
	PageListCar      = "list_car"
	PageError        = "error"
)

var pageNames = []string{
	PageLanding, PageLogin, PageRegister, PageDashboard, PageFilters,
	PageFilterDelete, PageLead, PageSettings, PageListCar, PageError,
}

// View is the data every page template receives.
type View struct {
	Title   string
	Page    string
	User    *domain.User
	Flashes []session.Flash
	// Error is the inline banner of a failed fetch or action.
	Error  string
	Status int
	Data   any
}

// Renderer holds one parsed template set per page.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses the layout, partials and every page once.
func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	r := &Renderer{pages: make(map[string]*template.Template, len(pageNames))}
	for _, name := range pageNames {
		t, err := template.New("layout.html").Funcs(Funcs()).ParseFS(sub,
			"layout.html", "partials/*.html", name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// Render executes page into w. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, page string, v *View) error {
	t, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}
	if v.Page == "" {
		v.Page = page
	}
	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout.html", v); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Funcs returns the helpers shared by every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"year":    func() int { return time.Now().Year() },
		"money":   Money,
		"percent": func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
		"label":   Label,
		"dict":    dict,
		"join":    strings.Join,
		"imgsrc":  ImageSrc,
	}
}

// ImageSrc allows API photo URLs into src attributes: http(s) links and
// base64 image data URLs. Anything else is dropped.
func ImageSrc(s string) template.URL {
	switch {
	case strings.HasPrefix(s, "https://"), strings.HasPrefix(s, "http://"):
		return template.URL(s)
	case strings.HasPrefix(s, "data:image/") && strings.Contains(s, ";base64,"):
		return template.URL(s)
	}
	return ""
}

// Money formats a dollar amount with thousands separators. It accepts
// float64, *float64 and int; nil renders as "-".
func Money(v any) string {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case *float64:
		if n == nil {
			return "-"
		}
		f = *n
	case int:
		f = float64(n)
	default:
		return "-"
	}
	neg := f < 0
	if neg {
		f = -f
	}
	whole := fmt.Sprintf("%.0f", f)
	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	if neg {
		return "-$" + b.String()
	}
	return "$" + b.String()
}

// Label turns an API token like "follow_up_1" into "Follow Up 1".
func Label(v any) string {
	s := strings.ReplaceAll(fmt.Sprint(v), "_", " ")
	words := strings.Fields(s)
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		k, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[k] = kv[i+1]
	}
	return m, nil
}
