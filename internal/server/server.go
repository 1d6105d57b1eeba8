package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/agenthands/concord/internal/core/align"
	"github.com/agenthands/concord/internal/core/model"
	"github.com/agenthands/concord/internal/logging"
	"github.com/agenthands/concord/internal/preprocess"
	"github.com/agenthands/concord/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const maxUploadBytes = 10 << 20

// Comparer runs one document comparison.
type Comparer interface {
	Compare(ctx context.Context, docA, docB []byte) (*model.Comparison, error)
}

type Server struct {
	Comparator  Comparer
	Documents   store.DocumentStore
	Results     store.ResultStore
	Logger      *zap.Logger
	Gatherer    prometheus.Gatherer
	CORSOrigins []string
}

func NewServer(comparator Comparer, docs store.DocumentStore, results store.ResultStore, logger *zap.Logger, gatherer prometheus.Gatherer, corsOrigins []string) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &Server{
		Comparator:  comparator,
		Documents:   docs,
		Results:     results,
		Logger:      logger,
		Gatherer:    gatherer,
		CORSOrigins: corsOrigins,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), logging.GinMiddleware(s.Logger, "/healthz", "/metrics"), CORS(s.CORSOrigins))

	r.POST("/upload/doc/:slot", s.UploadDocument)
	r.POST("/compare", s.CompareStored)
	r.POST("/analyze", s.Analyze)
	r.GET("/results", s.LatestResult)
	r.GET("/results/:id", s.GetResult)

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.Gatherer, promhttp.HandlerOpts{})))

	return r
}

// UploadDocument stages a document from a multipart "file", a form "text"
// field or the raw request body.
func (s *Server) UploadDocument(c *gin.Context) {
	slot, err := store.SlotName(c.Param("slot"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)
	raw, err := readUpload(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	doc, kind, err := prepareDocument(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Documents.PutDocument(c.Request.Context(), slot, doc); err != nil {
		s.Logger.Error("failed to store document", zap.String("slot", slot), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store document"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"slot": slot, "kind": kind, "bytes": len(doc)})
}

func readUpload(c *gin.Context) ([]byte, error) {
	switch c.ContentType() {
	case gin.MIMEMultipartPOSTForm, gin.MIMEPOSTForm:
		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open uploaded file: %w", err)
			}
			defer f.Close()
			return io.ReadAll(f)
		}
		return []byte(c.PostForm("text")), nil
	default:
		return c.GetRawData()
	}
}

// prepareDocument keeps JSON uploads as-is and normalises everything else as text.
func prepareDocument(raw []byte) ([]byte, string, error) {
	if strings.TrimSpace(string(raw)) == "" {
		return nil, "", errors.New("empty document")
	}
	if preprocess.IsJSON(raw) {
		return raw, "json", nil
	}
	return []byte(preprocess.Normalize(string(raw))), "text", nil
}

func (s *Server) CompareStored(c *gin.Context) {
	ctx := c.Request.Context()

	docA, errA := s.Documents.GetDocument(ctx, store.SlotLeft)
	docB, errB := s.Documents.GetDocument(ctx, store.SlotRight)
	for _, err := range []error{errA, errB} {
		switch {
		case err == nil:
		case errors.Is(err, store.ErrNotFound):
			c.JSON(http.StatusConflict, gin.H{"error": "Both documents must be uploaded before comparing"})
			return
		default:
			s.Logger.Error("failed to load documents", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load documents"})
			return
		}
	}

	s.runComparison(c, docA, docB)
}

type AnalyzeRequest struct {
	Doc1 json.RawMessage `json:"doc1"`
	Doc2 json.RawMessage `json:"doc2"`
}

// Analyze compares two documents sent inline. Each may be a JSON document
// or a JSON string holding plain text.
func (s *Server) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	docA, err := inlineDocument(req.Doc1)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "doc1: " + err.Error()})
		return
	}
	docB, err := inlineDocument(req.Doc2)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "doc2: " + err.Error()})
		return
	}

	s.runComparison(c, docA, docB)
}

func inlineDocument(raw json.RawMessage) ([]byte, error) {
	v := gjson.ParseBytes(raw)
	switch {
	case len(raw) == 0 || v.Type == gjson.Null:
		return nil, errors.New("missing document")
	case v.Type == gjson.String:
		doc, _, err := prepareDocument([]byte(v.Str))
		return doc, err
	default:
		return raw, nil
	}
}

func (s *Server) runComparison(c *gin.Context, docA, docB []byte) {
	ctx := c.Request.Context()

	result, err := s.Comparator.Compare(ctx, docA, docB)
	if err != nil {
		var shapeErr *align.ShapeError
		if errors.As(err, &shapeErr) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": shapeErr.Error()})
			return
		}
		s.Logger.Error("comparison failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Comparison failed"})
		return
	}

	if err := s.Results.Save(ctx, result); err != nil {
		s.Logger.Warn("failed to save comparison", zap.String("id", result.ID), zap.Error(err))
	}

	c.JSON(http.StatusOK, result)
}

func (s *Server) LatestResult(c *gin.Context) {
	result, err := s.Results.Latest(c.Request.Context())
	s.respondResult(c, result, err)
}

func (s *Server) GetResult(c *gin.Context) {
	result, err := s.Results.Get(c.Request.Context(), c.Param("id"))
	s.respondResult(c, result, err)
}

func (s *Server) respondResult(c *gin.Context, result *model.Comparison, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "No results found"})
	default:
		s.Logger.Error("failed to load results", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load results"})
	}
}
