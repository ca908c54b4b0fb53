package ui

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"phewasview/domain/core"
	apperrors "phewasview/internal/errors"
	"phewasview/internal/pipeline"
)

// allowListFrom reads a repeated query key. An absent key is unconstrained;
// a present key restricts to its non-blank values, so "?key=" admits nothing.
func allowListFrom(c *gin.Context, key string) pipeline.AllowList {
	values, ok := c.GetQueryArray(key)
	if !ok {
		return pipeline.Unconstrained()
	}
	return pipeline.RestrictedTo(values...)
}

// categoryFiltersFrom reads filter_cont, filter_cv, filter_self, filter_phe and mode
func categoryFiltersFrom(c *gin.Context) *pipeline.CategoryFilters {
	filters := pipeline.NewCategoryFilters(pipeline.ParseMatchMode(c.Query("mode")))
	for _, key := range pipeline.FilterKeys {
		if _, ok := c.GetQueryArray(key); !ok {
			continue
		}
		category, _ := pipeline.ParseFilterKey(key)
		filters.Set(category, allowListFrom(c, key))
	}
	return filters
}

// boolQuery parses a boolean query value, falling back on absence or error
func boolQuery(c *gin.Context, key string, fallback bool) bool {
	raw, ok := c.GetQuery(key)
	if !ok {
		return fallback
	}
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return v
}

// thresholdQuery returns nil when the key is absent
func thresholdQuery(c *gin.Context, key string) *float64 {
	raw, ok := c.GetQuery(key)
	if !ok {
		return nil
	}
	v := pipeline.ParseThreshold(raw)
	return &v
}

// classifyError maps an error onto an HTTP status and an error code. Domain
// sentinels without an AppError code get the code of their status.
func classifyError(err error) (int, string) {
	switch code := apperrors.GetCode(err); code {
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest, code
	case apperrors.CodeNotFound:
		return http.StatusNotFound, code
	}
	switch {
	case core.IsInputError(err):
		return http.StatusBadRequest, apperrors.CodeInvalidInput
	case core.IsNotFoundError(err):
		return http.StatusNotFound, apperrors.CodeNotFound
	default:
		code := apperrors.GetCode(err)
		if code == "UNKNOWN" {
			code = apperrors.CodeInternalError
		}
		return http.StatusInternalServerError, code
	}
}

func respondError(c *gin.Context, err error) {
	status, code := classifyError(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
