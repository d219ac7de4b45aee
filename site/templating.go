package site

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"blogicum/constants"
	"blogicum/database"
	"blogicum/forms"
	"blogicum/media"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

//go:embed templates/*.html
var embeddedTemplates embed.FS

var templatesCache sync.Map

// templatesFS reads templates from disk in debug mode so edits show up
// without a rebuild.
func (s *Site) templatesFS() fs.FS {
	if s.cfg.Debug {
		if _, err := os.Stat("site/templates/layout.html"); err == nil {
			return os.DirFS("site")
		}
	}
	return embeddedTemplates
}

var templateFuncs = template.FuncMap{
	"parseMarkdown": func(markdownStr string) template.HTML {
		extensions := parser.CommonExtensions | parser.AutoHeadingIDs
		p := parser.NewWithExtensions(extensions)
		doc := p.Parse([]byte(markdownStr))

		// raw HTML and unsafe link schemes are dropped, links open in a new tab
		htmlFlags := html.CommonFlags | html.SkipHTML | html.Safelink |
			html.HrefTargetBlank | html.NoopenerLinks | html.NoreferrerLinks
		opts := html.RendererOptions{Flags: htmlFlags}
		renderer := html.NewRenderer(opts)

		return template.HTML(markdown.Render(doc, renderer))
	},
	"dateFmt": func(layout string, t time.Time) string {
		return t.Format(layout)
	},
	"truncateWords": func(n int, s string) string {
		words := strings.Fields(s)
		if len(words) <= n {
			return strings.Join(words, " ")
		}
		return strings.Join(words[:n], " ") + " …"
	},
	"mediaURL":   media.URL,
	"postURL":    postURL,
	"profileURL": profileURL,
	"idStr": func(id uint) string {
		return strconv.FormatUint(uint64(id), 10)
	},
	"usernameHelp": func() string {
		return forms.UsernameHelpText
	},
}

type GlobalTemplateData struct {
	CurrentUser *database.User
	IsDebug     bool
	SiteName    string
	PublicURL   string
	Now         time.Time
}

func (s *Site) loadTemplate(templateName string) (*template.Template, error) {
	cached, ok := templatesCache.Load(templateName)
	if ok && !s.cfg.Debug {
		return cached.(*template.Template), nil
	}

	t, err := template.New("layout.html").Funcs(templateFuncs).ParseFS(s.templatesFS(),
		"templates/layout.html",
		"templates/"+templateName+".html",
	)
	if err != nil {
		return nil, err
	}
	templatesCache.Store(templateName, t)
	return t, nil
}

// RenderTemplate executes templates/<templateName>.html inside the layout.
// Output is buffered so a failing template still yields a clean error page.
func (s *Site) RenderTemplate(w http.ResponseWriter, r *http.Request, templateName string, data any) {
	templateData := struct {
		Global GlobalTemplateData
		Data   any
	}{
		Global: GlobalTemplateData{
			CurrentUser: getSignedInUserOrNil(r),
			IsDebug:     s.cfg.Debug,
			SiteName:    constants.APP_NAME,
			PublicURL:   s.cfg.PublicURL,
			Now:         s.now(),
		},
		Data: data,
	}

	t, err := s.loadTemplate(templateName)
	if err != nil {
		s.serverError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, templateData); err != nil {
		s.serverError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if _, err := buf.WriteTo(w); err != nil {
		log.Printf("Write %s response: %v", templateName, err)
	}
}
