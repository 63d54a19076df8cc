package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/jrsteele09/ecolink/collections"
	"github.com/jrsteele09/ecolink/session"
	"github.com/rs/zerolog/log"
)

//go:embed templates/*
var templateFiles embed.FS

const (
	contentTypeHTML = "text/html; charset=utf-8"
	layoutTemplate  = "layout.html"
)

var templateFuncs = template.FuncMap{
	"join":          strings.Join,
	"collectedPath": collectedPath,
	"materialField": collections.MaterialField,
	"add":           func(a, b int) int { return a + b },
}

func TemplateFilesFS() fs.FS {
	subFS, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		panic("Failed to create templates sub filesystem: " + err.Error())
	}
	return subFS
}

// ParseTemplate parses a page together with the shared layout
func ParseTemplate(name string) (*template.Template, error) {
	return template.New(name).Funcs(templateFuncs).ParseFS(TemplateFilesFS(), layoutTemplate, name)
}

// mustParseTemplate is for handler constructors, which run once at startup
func mustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse " + name + " template: " + err.Error())
	}
	return tmpl
}

// PageData is shared by every page rendered inside the layout
type PageData struct {
	AppName       string
	Authenticated bool
	User          *session.User
	Error         string
	Success       string
}

func (s *Server) pageData(r *http.Request) PageData {
	data := PageData{
		AppName: s.config.GetAppName(),
		Error:   r.URL.Query().Get("error"),
		Success: r.URL.Query().Get("success"),
	}
	if bs := sessionFrom(r); bs != nil {
		data.User = bs.Auth.CurrentUser()
		data.Authenticated = data.User != nil
	}
	return data
}

func render(w http.ResponseWriter, tmpl *template.Template, status int, data any) {
	w.Header().Set("Content-Type", contentTypeHTML)
	w.WriteHeader(status)
	if err := tmpl.ExecuteTemplate(w, layoutTemplate, data); err != nil {
		log.Err(err).Str("template", tmpl.Name()).Msg("Failed to render template")
	}
}
