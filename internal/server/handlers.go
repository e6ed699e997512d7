package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"meal-planner/internal/macros"
	"meal-planner/internal/planner"
)

// statusClientClosedRequest is reported when the caller went away mid-generation.
const statusClientClosedRequest = 499

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) validateMacros(c *gin.Context) {
	var target macros.Target
	if err := c.ShouldBindJSON(&target); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	if err := target.Check(); err != nil {
		_ = c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, macros.Validate(target))
}

type suggestRequest struct {
	Calories float64 `json:"calories" binding:"gt=0"`
}

func (s *Server) suggestMacros(c *gin.Context) {
	var req suggestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "calories must be a positive number"})
		return
	}
	c.JSON(http.StatusOK, macros.SuggestMacros(req.Calories))
}

func (s *Server) normalizePlan(c *gin.Context) {
	var raw map[string]any
	if err := c.ShouldBindJSON(&raw); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
		return
	}
	c.JSON(http.StatusOK, s.normalizer.Normalize(raw))
}

type markdownRequest struct {
	Markdown string `json:"markdown" binding:"required"`
}

func (s *Server) parseMarkdown(c *gin.Context) {
	var req markdownRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "markdown is required"})
		return
	}
	c.JSON(http.StatusOK, s.normalizer.ParseMarkdown(req.Markdown))
}

type generateRequest struct {
	SaveToHistory bool   `json:"save_to_history"`
	Notes         string `json:"notes"`
}

func (s *Server) generatePlan(c *gin.Context) {
	if s.generator == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "generation is not configured"})
		return
	}

	var req generateRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON format"})
			return
		}
	}

	res, err := s.generator.Generate(c.Request.Context(), planner.Options{
		SaveToHistory: req.SaveToHistory,
		Notes:         req.Notes,
	})
	if err != nil {
		_ = c.Error(err)
		var genErr *planner.GenerationError
		switch {
		case errors.As(err, &genErr):
			body := gin.H{"success": false, "error": genErr.Message}
			if genErr.RedirectTo != "" {
				body["redirect_to"] = genErr.RedirectTo
			}
			c.JSON(genErr.StatusCode, body)
		case errors.Is(err, planner.ErrInvalidResponseFormat):
			c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		default:
			s.logger.Error("meal plan generation failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "Failed to generate meal plan"})
		}
		return
	}

	if res.Cancelled() {
		c.JSON(statusClientClosedRequest, gin.H{"success": false, "cancelled": true})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "plan": res.Plan})
}
