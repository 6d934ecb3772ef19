package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/genposter/pkg/buildinfo"
	"github.com/matzehuels/genposter/pkg/config"
	perrors "github.com/matzehuels/genposter/pkg/errors"
	"github.com/matzehuels/genposter/pkg/export"
	"github.com/matzehuels/genposter/pkg/palette"
	"github.com/matzehuels/genposter/pkg/pipeline"
	"github.com/matzehuels/genposter/pkg/poster"
	"github.com/matzehuels/genposter/pkg/shading"
	"github.com/matzehuels/genposter/pkg/shape"
)

// Response headers describing a render.
const (
	headerRenderID = "X-Render-ID"
	headerSeed     = "X-Poster-Seed"
	headerCache    = "X-Cache"
	headerWarnings = "X-Poster-Warnings"
)

type apiError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type stylesResponse struct {
	PaletteStyles []string `json:"palette_styles"`
	ShapeKinds    []string `json:"shape_kinds"`
	AlphaModes    []string `json:"alpha_modes"`
	Formats       []string `json:"formats"`
	Presets       []string `json:"presets"`
}

type presetResponse struct {
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Params      poster.Params `json:"params"`
}

// renderRequest is the JSON body of POST /api/v1/render. Parameter keys sit
// at the top level next to the output options.
type renderRequest struct {
	poster.Params
	Preset  string `json:"preset,omitempty"`
	Format  string `json:"format,omitempty"`
	Quality int    `json:"quality,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) handleStyles(w http.ResponseWriter, r *http.Request) {
	resp := stylesResponse{
		Formats: export.Formats(),
		Presets: config.Builtin(),
	}
	for _, st := range palette.Styles() {
		resp.PaletteStyles = append(resp.PaletteStyles, string(st))
	}
	for _, k := range shape.Kinds() {
		resp.ShapeKinds = append(resp.ShapeKinds, string(k))
	}
	for _, m := range shading.AlphaModes() {
		resp.AlphaModes = append(resp.AlphaModes, string(m))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePreset(w http.ResponseWriter, r *http.Request) {
	p, err := builtinPreset(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, presetResponse{Name: p.Name, Description: p.Description, Params: p.Poster})
}

func (s *Server) handlePoster(w http.ResponseWriter, r *http.Request) {
	format, err := export.ParseFormat(chi.URLParam(r, "format"))
	if err != nil {
		writeError(w, err)
		return
	}
	q := r.URL.Query()
	params, err := paramsFromQuery(q)
	if err != nil {
		writeError(w, err)
		return
	}
	opts := pipeline.Options{Params: params, Formats: []string{format}, Logger: s.logger}
	if v := q.Get("quality"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeError(w, perrors.New(perrors.ErrCodeInvalidParameter, "quality: cannot parse %q", v))
			return
		}
		opts.Quality = n
	}

	res, err := s.execute(r.Context(), opts)
	if err != nil {
		s.renderFailed(w, r, err)
		return
	}
	if download, _ := strconv.ParseBool(q.Get("download")); download {
		w.Header().Set("Content-Disposition", `attachment; filename="`+downloadName(format)+`"`)
	}
	writeImage(w, res, format)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, perrors.Wrap(perrors.ErrCodeInvalidParameter, err, "read body"))
		return
	}
	req, err := decodeRenderRequest(body)
	if err != nil {
		writeError(w, err)
		return
	}

	format := export.FormatPNG
	if req.Format != "" {
		if format, err = export.ParseFormat(req.Format); err != nil {
			writeError(w, err)
			return
		}
	}
	opts := pipeline.Options{
		Params:  req.Params,
		Formats: []string{format},
		Quality: req.Quality,
		Logger:  s.logger,
	}
	res, err := s.execute(r.Context(), opts)
	if err != nil {
		s.renderFailed(w, r, err)
		return
	}
	writeImage(w, res, format)
}

func (s *Server) renderFailed(w http.ResponseWriter, r *http.Request, err error) {
	if perrors.GetCode(err) == "" {
		s.logger.Error("render failed", "path", r.URL.Path, "err", err)
	}
	writeError(w, err)
}

// decodeRenderRequest applies the body on top of the named preset, or the
// defaults when no preset is given. Unknown keys are rejected.
func decodeRenderRequest(body []byte) (renderRequest, error) {
	var head struct {
		Preset string `json:"preset"`
	}
	if len(bytes.TrimSpace(body)) == 0 {
		body = []byte("{}")
	}
	if err := json.Unmarshal(body, &head); err != nil {
		return renderRequest{}, perrors.Wrap(perrors.ErrCodeInvalidParameter, err, "decode request")
	}

	req := renderRequest{Params: poster.DefaultParams()}
	if head.Preset != "" {
		p, err := builtinPreset(head.Preset)
		if err != nil {
			return renderRequest{}, err
		}
		req.Params = p.Poster
		if len(p.Output.Formats) > 0 {
			req.Format = p.Output.Formats[0]
		}
		req.Quality = p.Output.Quality
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		return renderRequest{}, perrors.Wrap(perrors.ErrCodeInvalidParameter, err, "decode request")
	}
	// A zero seed means "pick one for me", as in the form.
	if req.Seed != nil && *req.Seed == 0 {
		req.Seed = nil
	}
	return req, nil
}

// paramsFromQuery builds parameters from URL query values: the named preset
// (or the defaults) overlaid with every parameter present in q. When a key
// repeats, the last value wins so a hidden "false" input followed by a
// checkbox behaves like a boolean toggle.
func paramsFromQuery(q url.Values) (poster.Params, error) {
	p := poster.DefaultParams()
	if name := q.Get("preset"); name != "" {
		preset, err := builtinPreset(name)
		if err != nil {
			return poster.Params{}, err
		}
		p = preset.Poster
	}
	for _, f := range poster.Fields() {
		vs, ok := q[f.Name]
		if !ok || len(vs) == 0 {
			continue
		}
		if err := f.Set(&p, vs[len(vs)-1]); err != nil {
			return poster.Params{}, err
		}
	}
	return p, nil
}

// queryFromParams is the inverse of paramsFromQuery.
func queryFromParams(p poster.Params) url.Values {
	q := url.Values{}
	for _, f := range poster.Fields() {
		if v := f.Get(&p); v != "" {
			q.Set(f.Name, v)
		}
	}
	return q
}

// builtinPreset loads an embedded preset. File paths are never resolved
// from web input.
func builtinPreset(name string) (*config.Preset, error) {
	if !slices.Contains(config.Builtin(), name) {
		return nil, perrors.New(perrors.ErrCodeNotFound, "unknown preset %q", name)
	}
	return config.Load(name)
}

func downloadName(format string) string {
	return strings.TrimSuffix(export.DownloadName, ".png") + export.Extension(format)
}

func writeImage(w http.ResponseWriter, res *pipeline.Result, format string) {
	h := w.Header()
	h.Set("Content-Type", export.ContentType(format))
	h.Set(headerRenderID, res.ID)
	h.Set(headerSeed, strconv.FormatInt(res.Seed, 10))
	if res.CacheInfo.Hit {
		h.Set(headerCache, "hit")
	} else {
		h.Set(headerCache, "miss")
	}
	if len(res.Warnings) > 0 {
		h.Set(headerWarnings, strings.Join(res.Warnings, "; "))
	}
	if res.Seeded {
		h.Set("Cache-Control", "public, max-age=86400")
	} else {
		h.Set("Cache-Control", "no-store")
	}
	data := res.Artifacts[format]
	h.Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status, code := statusFor(err)
	writeJSON(w, status, apiError{Error: code, Message: perrors.UserMessage(err), Field: perrors.FieldOf(err)})
}

func statusFor(err error) (int, string) {
	code := perrors.GetCode(err)
	switch code {
	case perrors.ErrCodeInvalidParameter, perrors.ErrCodeInvalidColor,
		perrors.ErrCodeInvalidFormat, perrors.ErrCodeInvalidPreset:
		return http.StatusBadRequest, string(code)
	case perrors.ErrCodeNotFound:
		return http.StatusNotFound, string(code)
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, "UNAVAILABLE"
	}
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	return http.StatusInternalServerError, string(code)
}
