package server

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/matzehuels/genposter/pkg/config"
	perrors "github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/poster"
)

//go:embed templates/index.html
var templateFS embed.FS

var indexTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

type formField struct {
	Name    string
	Label   string
	Input   string // text, number, color, select, checkbox
	Value   string
	Checked bool
	Options []string
	Step    string
}

type indexPage struct {
	Fields      []formField
	Presets     []string
	Preset      string
	PosterURL   string
	DownloadURL string
	Error       string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page := indexPage{Presets: config.Builtin(), Preset: q.Get("preset")}

	params, err := paramsFromQuery(q)
	if err == nil {
		err = params.Validate()
	}
	if err != nil {
		page.Error = perrors.UserMessage(err)
		params = poster.DefaultParams()
		page.Preset = ""
	} else {
		query := queryFromParams(params).Encode()
		page.PosterURL = "/poster.png?" + query
		page.DownloadURL = page.PosterURL + "&download=1"
	}
	page.Fields = formFields(params)

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, page); err != nil {
		s.logger.Error("render index", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}

func formFields(p poster.Params) []formField {
	fields := poster.Fields()
	out := make([]formField, 0, len(fields))
	for _, f := range fields {
		ff := formField{
			Name:    f.Name,
			Label:   f.Label,
			Value:   f.Get(&p),
			Options: f.Options,
		}
		switch f.Kind {
		case poster.FieldInt:
			ff.Input = "number"
			ff.Step = "1"
		case poster.FieldFloat:
			ff.Input = "number"
			ff.Step = "any"
		case poster.FieldChoice:
			ff.Input = "select"
		case poster.FieldBool:
			ff.Input = "checkbox"
			ff.Checked = ff.Value == "true"
		case poster.FieldSeed:
			ff.Input = "number"
			ff.Step = "1"
		default:
			ff.Input = "text"
		}
		out = append(out, ff)
	}
	return out
}
