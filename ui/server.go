package ui

import (
	"html/template"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"phewasview/app"
	"phewasview/internal/api"
	"phewasview/internal/render"
)

// PNGRenderer draws a figure as a PNG image
type PNGRenderer interface {
	RenderPNG(w io.Writer, fig render.Figure) error
}

// Server serves the exploration page and its JSON/PNG API
type Server struct {
	router    *gin.Engine
	explore   *app.ExploreService
	hub       *api.SSEHub
	renderer  PNGRenderer
	templates *template.Template
}

// NewServer creates a server. hub may be nil to disable progress streaming
// and renderer may be nil to serve JSON figures only.
func NewServer(explore *app.ExploreService, hub *api.SSEHub, renderer PNGRenderer) (*Server, error) {
	s := &Server{
		router:   gin.New(),
		explore:  explore,
		hub:      hub,
		renderer: renderer,
	}

	tmpl, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = tmpl

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes configures the application routes
func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	apiGroup := s.router.Group("/api")
	{
		apiGroup.POST("/load", s.handleLoad)
		apiGroup.GET("/tables/:category", s.handleTable)
		apiGroup.GET("/plot/:kind", s.handlePlot)
		apiGroup.GET("/labels/:category", s.handleLabels)
		apiGroup.GET("/export.csv", s.handleExport)
		apiGroup.GET("/export.xlsx", s.handleExport)
		apiGroup.GET("/report", s.handleReport)
		if s.hub != nil {
			apiGroup.GET("/events", s.hub.HandleSSE)
		}
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start starts the web server
func (s *Server) Start(addr string) error {
	log.Printf("Starting PheWAS explorer on http://%s", addr)
	return s.router.Run(addr)
}
