// Where: internal/webui/server.go
// What: Single-page web UI over the analysis path.
// Why: Offer a browser upload form and a small JSON API around the same calls.
package webui

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/Masterminds/sprig/v3"
	"github.com/labstack/echo/v4"

	"github.com/koloko/image-analyzer/assets"
	"github.com/koloko/image-analyzer/internal/config"
	"github.com/koloko/image-analyzer/internal/identity"
	"github.com/koloko/image-analyzer/internal/vision"
)

// maxUploadBytes bounds a single uploaded image.
const maxUploadBytes = 20 << 20

// Analyzer is the analysis surface the handlers depend on.
type Analyzer interface {
	AnalyzeImage(ctx context.Context, req vision.Request) (string, error)
	AnalyzeAll(ctx context.Context, items []vision.BatchItem) []vision.BatchResult
	ServiceInfo() vision.ServiceInfo
}

// Server renders the upload form and dispatches analysis requests.
type Server struct {
	analyzer Analyzer
	presets  config.Presets
	tmpl     *template.Template
	logger   *slog.Logger
}

// New parses the embedded page template and builds a server.
func New(analyzer Analyzer, presets config.Presets, logger *slog.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(sprig.HtmlFuncMap()).ParseFS(assets.WebTemplatesFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse web templates: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Server{analyzer: analyzer, presets: presets, tmpl: tmpl, logger: logger}, nil
}

// Register attaches all routes to the echo instance.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/", s.handleIndex)
	e.POST("/analyze", s.handleAnalyze)
	e.POST("/api/analyze", s.handleAPIAnalyze)
	e.GET("/healthz", s.handleHealthz)
}

type resultView struct {
	Name        string
	Description string
	Error       string
}

type pageData struct {
	Info           vision.ServiceInfo
	Presets        config.Presets
	SelectedPreset string
	SystemPrompt   string
	Prompt         string
	Results        []resultView
}

func (s *Server) handleIndex(c echo.Context) error {
	preset, _ := s.presets.Find("")
	return s.render(c, pageData{
		Info:           s.analyzer.ServiceInfo(),
		Presets:        s.presets,
		SelectedPreset: preset.Name,
		SystemPrompt:   preset.System,
		Prompt:         preset.Prompt,
	})
}

// handleAnalyze processes the browser form: one analysis per uploaded file,
// results rendered back into the same page.
func (s *Server) handleAnalyze(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed multipart form")
	}
	files := form.File["images"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no images uploaded")
	}

	systemPrompt, userPrompt := s.promptsFromForm(c)

	var items []vision.BatchItem
	var results []resultView
	for _, file := range files {
		data, err := readUpload(file)
		if err != nil {
			results = append(results, resultView{Name: file.Filename, Error: err.Error()})
			continue
		}
		items = append(items, vision.BatchItem{
			Name: file.Filename,
			Request: vision.Request{
				Image:        data,
				SystemPrompt: systemPrompt,
				UserPrompt:   userPrompt,
			},
		})
	}

	for _, result := range s.analyzer.AnalyzeAll(c.Request().Context(), items) {
		view := resultView{Name: result.Name, Description: result.Description}
		if result.Err != nil {
			view.Error = result.Err.Error()
			s.logger.Warn("analysis failed", "image", result.Name, "error", result.Err)
		}
		results = append(results, view)
	}

	return s.render(c, pageData{
		Info:           s.analyzer.ServiceInfo(),
		Presets:        s.presets,
		SelectedPreset: c.FormValue("preset"),
		SystemPrompt:   c.FormValue("system_prompt"),
		Prompt:         c.FormValue("prompt"),
		Results:        results,
	})
}

// handleAPIAnalyze is the JSON variant: one image, one description.
func (s *Server) handleAPIAnalyze(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	data, err := readUpload(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	systemPrompt, userPrompt := s.promptsFromForm(c)
	description, err := s.analyzer.AnalyzeImage(c.Request().Context(), vision.Request{
		Image:        data,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
	})
	if err != nil {
		s.logger.Warn("analysis failed", "image", file.Filename, "error", err)
		return echo.NewHTTPError(statusFor(err), err.Error())
	}

	return c.JSON(http.StatusOK, map[string]string{"description": description})
}

func (s *Server) handleHealthz(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// promptsFromForm merges preset selection with explicit form overrides,
// mirroring the CLI's precedence.
func (s *Server) promptsFromForm(c echo.Context) (systemPrompt, userPrompt string) {
	systemPrompt = c.FormValue("system_prompt")
	userPrompt = c.FormValue("prompt")
	if name := c.FormValue("preset"); name != "" {
		if preset, ok := s.presets.Find(name); ok {
			if systemPrompt == "" {
				systemPrompt = preset.System
			}
			if userPrompt == "" {
				userPrompt = preset.Prompt
			}
		}
	}
	return systemPrompt, userPrompt
}

func (s *Server) render(c echo.Context, data pageData) error {
	c.Response().Header().Set(echo.HeaderContentType, echo.MIMETextHTMLCharsetUTF8)
	c.Response().WriteHeader(http.StatusOK)
	return s.tmpl.ExecuteTemplate(c.Response(), "index.html.tmpl", data)
}

func readUpload(file *multipart.FileHeader) ([]byte, error) {
	if file.Size > maxUploadBytes {
		return nil, fmt.Errorf("%s exceeds the %d MB upload limit", file.Filename, maxUploadBytes>>20)
	}
	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload %s: %w", file.Filename, err)
	}
	defer src.Close()
	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read upload %s: %w", file.Filename, err)
	}
	if len(data) > maxUploadBytes {
		return nil, fmt.Errorf("%s exceeds the %d MB upload limit", file.Filename, maxUploadBytes>>20)
	}
	return data, nil
}

// statusFor maps the analysis error taxonomy onto HTTP statuses for the API.
func statusFor(err error) int {
	var invalid *vision.InvalidImageError
	var rateLimited *vision.RateLimitError
	var auth *vision.AuthError
	var unavailable *identity.UnavailableError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest
	case errors.As(err, &rateLimited):
		return http.StatusTooManyRequests
	case errors.As(err, &auth), errors.As(err, &unavailable):
		return http.StatusBadGateway
	default:
		return http.StatusBadGateway
	}
}
