package server

import (
	"bytes"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/timberlens-org/timberlens/analyst"
	"github.com/timberlens-org/timberlens/comext"
	"github.com/timberlens-org/timberlens/narrator"
)

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleAsk(c *gin.Context) {
	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "question is required"})
		return
	}

	ans, err := s.service.Ask(c.Request.Context(), req.Question)
	if err != nil {
		var narrErr *narrator.AnswerGenerationError
		if errors.As(err, &narrErr) && ans != nil {
			// Narration failed but the literal result is still usable.
			c.JSON(http.StatusOK, gin.H{
				"answer":         ans,
				"narrationError": narrErr.Error(),
			})
			return
		}
		s.log.Errorw("ask failed", "error", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: errorKind(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"answer": ans})
}

func (s *Server) handleRefresh(c *gin.Context) {
	if err := s.service.Refresh(c.Request.Context()); err != nil {
		s.log.Errorw("refresh failed", "error", err)
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: errorKind(err)})
		return
	}
	diag, err := s.service.Diagnostics()
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": diag})
}

func (s *Server) handleDiagnostics(c *gin.Context) {
	diag, err := s.service.Diagnostics()
	if err != nil {
		c.JSON(http.StatusNotFound, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"diagnostics": diag})
}

func (s *Server) handleExamples(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"examples": analyst.ExampleQuestions()})
}

func (s *Server) handleExport(c *gin.Context) {
	table, err := s.service.Table(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, errorResponse{Error: err.Error(), Kind: errorKind(err)})
		return
	}

	var buf bytes.Buffer
	if err := comext.ExportXLSX(table, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, errorResponse{Error: err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="timberlens-table.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", buf.Bytes())
}

// errorKind maps taxonomy errors to stable identifiers for clients.
func errorKind(err error) string {
	var fetchErr *comext.FetchError
	var schemaErr *comext.SchemaError
	var narrErr *narrator.AnswerGenerationError
	switch {
	case errors.As(err, &fetchErr):
		return "FetchError"
	case errors.As(err, &schemaErr):
		return "SchemaError"
	case errors.As(err, &narrErr):
		return "AnswerGenerationError"
	case errors.Is(err, analyst.ErrNoTable):
		return "NoTable"
	}
	return ""
}
