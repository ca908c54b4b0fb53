package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"phewasview/domain/phewas"
	"phewasview/internal/render"
)

//go:embed templates/*.html
var templateFS embed.FS

func parseTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"lower": strings.ToLower,
	}
	tmpl, err := template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}

// indexData feeds the selectors of index.html
type indexData struct {
	SessionID  string
	Categories []phewas.AnalysisType
	Kinds      []render.Kind
	Subsets    []phewas.Subset
	Limit      int
	Metric     phewas.Metric
}

// renderTemplate executes a template into a buffer before writing the response
func (s *Server) renderTemplate(c *gin.Context, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		log.Printf("Template error for %s: %v", templateName, err)
		c.AbortWithStatusJSON(500, gin.H{"error": "Template rendering failed", "details": err.Error()})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Writer.WriteHeader(200)
	if _, err := buf.WriteTo(c.Writer); err != nil {
		log.Printf("Error writing template response: %v", err)
	}
}
