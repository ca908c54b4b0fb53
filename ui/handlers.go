package ui

import (
	"bytes"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"phewasview/adapters/excel"
	"phewasview/app"
	"phewasview/domain/phewas"
	apperrors "phewasview/internal/errors"
	"phewasview/internal/pipeline"
	"phewasview/internal/render"
	"phewasview/internal/report"
)

// loadRequest accepts free text in genes or an explicit list in gene_list
type loadRequest struct {
	Genes     string   `json:"genes"`
	GeneList  []string `json:"gene_list"`
	Subset    string   `json:"subset"`
	SessionID string   `json:"session_id"`
}

func (s *Server) handleIndex(c *gin.Context) {
	defaults := s.explore.Defaults()
	s.renderTemplate(c, "index.html", indexData{
		SessionID:  sessionFrom(c, "").String(),
		Categories: phewas.AnalysisTypes,
		Kinds:      render.Kinds,
		Subsets:    []phewas.Subset{phewas.SubsetBoth, phewas.SubsetMaleOnly, phewas.SubsetFemaleOnly},
		Limit:      defaults.Limit,
		Metric:     defaults.Metric,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleLoad(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.InvalidInput("invalid request body: "+err.Error()))
		return
	}

	tokens := phewas.ParseGeneList(req.Genes)
	if len(req.GeneList) > 0 {
		tokens = phewas.ParseGeneList(strings.Join(req.GeneList, ","))
	}
	sessionID := sessionFrom(c, req.SessionID)

	rs, report := s.explore.Load(c.Request.Context(), sessionID, tokens, phewas.ParseSubset(req.Subset))
	c.JSON(http.StatusOK, gin.H{
		"session_id":    sessionID.String(),
		"result_set_id": rs.ID.String(),
		"subset":        rs.Subset,
		"genes":         rs.Genes,
		"rows":          len(rs.Rows),
		"status":        report.Genes,
		"log":           report.Log,
	})
}

func (s *Server) handleTable(c *gin.Context) {
	category, err := phewas.ParseAnalysisType(c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	defaults := s.explore.Defaults()
	table, err := s.explore.Table(c.Request.Context(), sessionFrom(c, ""), app.TableRequest{
		Category:  category,
		Limit:     pipeline.ParseLimit(c.Query("limit"), defaults.Limit),
		Metric:    phewas.Metric(strings.ToLower(c.DefaultQuery("metric", string(defaults.Metric)))),
		Threshold: thresholdQuery(c, "threshold"),
		Filter:    allowListFrom(c, "filter"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, table)
}

func (s *Server) handlePlot(c *gin.Context) {
	kind, err := render.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, err)
		return
	}

	defaults := s.explore.Defaults()
	opts := render.DefaultOptions()
	opts.ShowLegend = boolQuery(c, "legend", true)
	opts.Gene = strings.TrimSpace(c.Query("gene"))
	if raw := c.Query("category"); raw != "" {
		category, err := phewas.ParseAnalysisType(raw)
		if err != nil {
			respondError(c, err)
			return
		}
		opts.Category = category
	}
	if t := thresholdQuery(c, "threshold"); t != nil {
		opts.Threshold = *t
	}

	fig, err := s.explore.Plot(c.Request.Context(), sessionFrom(c, ""), app.PlotRequest{
		Kind:    kind,
		Metric:  phewas.Metric(strings.ToLower(c.DefaultQuery("metric", string(defaults.Metric)))),
		Limit:   pipeline.ParseLimit(c.Query("limit"), defaults.Limit),
		UseLog:  boolQuery(c, "log", true),
		Filters: categoryFiltersFrom(c),
		Options: opts,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	if c.Query("format") != "png" || s.renderer == nil {
		c.JSON(http.StatusOK, fig)
		return
	}
	var buf bytes.Buffer
	if err := s.renderer.RenderPNG(&buf, fig); err != nil {
		log.Printf("[API] PNG render failed for %s: %v", kind, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "render failed"})
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

func (s *Server) handleLabels(c *gin.Context) {
	category, err := phewas.ParseAnalysisType(c.Param("category"))
	if err != nil {
		respondError(c, err)
		return
	}

	labels, err := s.explore.Labels(c.Request.Context(), category)
	if err != nil {
		log.Printf("[API] labels for %s unavailable: %v", category, err)
		c.JSON(http.StatusOK, gin.H{"category": category, "labels": []string{}, "warning": "outcome catalog unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"category": category, "labels": labels})
}

func (s *Server) handleExport(c *gin.Context) {
	format := excel.FormatForPath(c.Request.URL.Path)
	sessionID := sessionFrom(c, "")

	table, err := s.explore.ExportTable(c.Request.Context(), sessionID)
	if err != nil {
		respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.Write(&buf, table, format); err != nil {
		respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="phewas_results.`+string(format)+`"`)
	c.Data(http.StatusOK, format.ContentType(), buf.Bytes())
}

func (s *Server) handleReport(c *gin.Context) {
	md, err := s.explore.Report(c.Request.Context(), sessionFrom(c, ""))
	if err != nil {
		respondError(c, err)
		return
	}
	if c.DefaultQuery("format", "html") == "md" {
		c.Data(http.StatusOK, "text/markdown; charset=utf-8", md)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", report.HTML(md))
}
