// Package reviews exposes the review bench over HTTP and WebSocket.
package reviews

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"nyaya-backend/internal/bench"
	"nyaya-backend/internal/decode"
	"nyaya-backend/internal/extract"
	"nyaya-backend/internal/llm"
	"nyaya-backend/internal/procurement"
	"nyaya-backend/internal/shared/server/respond"
	"nyaya-backend/internal/shared/telemetry"
	"nyaya-backend/internal/shared/util"
)

const (
	maxUploadSize = 10 << 20 // 10MB
	maxCaseBytes  = 1 << 20
)

// Bench is the review engine behind the handlers.
type Bench interface {
	Analyze(ctx context.Context, c procurement.Case) (bench.AnalysisResult, error)
	Stream(ctx context.Context, c procurement.Case) <-chan bench.Event
	ParseTender(ctx context.Context, text string) (procurement.Draft, decode.Result, error)
	CrossExamine(ctx context.Context, question string, c procurement.Case, result bench.AnalysisResult) (string, error)
}

// Handler wires HTTP handlers to the bench.
type Handler struct {
	Bench    Bench
	upgrader websocket.Upgrader
}

// NewHandler constructs a Handler. allowedOrigins gates WebSocket upgrades the
// same way CORS gates plain requests; "*" allows any origin.
func NewHandler(b Bench, allowedOrigins []string) *Handler {
	return &Handler{
		Bench: b,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
	}
}

// RegisterRoutes attaches fixture routes to open and model-backed routes to model.
func (h *Handler) RegisterRoutes(open, model *gin.RouterGroup) {
	open.GET("/sample-case-violation", h.sampleViolation)
	open.GET("/sample-case-compliant", h.sampleCompliant)

	model.POST("/analyze", h.analyze)
	model.GET("/ws/analyze", h.streamAnalysis)
	model.POST("/parse_tender", h.parseTender)
	model.POST("/ask_bench", h.askBench)
}

func (h *Handler) sampleViolation(c *gin.Context) {
	respond.OK(c, procurement.SampleViolation())
}

func (h *Handler) sampleCompliant(c *gin.Context) {
	respond.OK(c, procurement.SampleCompliant())
}

func (h *Handler) analyze(c *gin.Context) {
	var req procurement.Case
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	c.Set("caseId", req.TenderID)

	result, err := h.Bench.Analyze(c.Request.Context(), req)
	if err != nil {
		benchError(c, err, "analysis failed")
		return
	}
	c.Set("verdict", result.VerdictTag())
	respond.OK(c, result)
}

type parseTenderRequest struct {
	Text string `json:"text"`
}

func (h *Handler) parseTender(c *gin.Context) {
	text, ok := h.tenderText(c)
	if !ok {
		return
	}

	draft, res, err := h.Bench.ParseTender(c.Request.Context(), text)
	if err != nil {
		benchError(c, err, "tender parsing failed")
		return
	}
	if !res.OK() {
		respond.OK(c, res)
		return
	}
	respond.OK(c, draft)
}

// tenderText reads the tender from a multipart upload or a JSON body.
func (h *Handler) tenderText(c *gin.Context) (string, bool) {
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		var req parseTenderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			bindError(c, err)
			return "", false
		}
		return req.Text, true
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file is required", nil)
		return "", false
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read file", nil)
		return "", false
	}
	// An unusable name only loses the extension hint; sniffing still applies.
	fileName, _ := util.SanitizeFileName(fileHeader.Filename)
	telemetry.Info("tender_upload", map[string]any{"file_name": fileName, "size_bytes": len(data)})
	text, err := extract.FromBytes(c.Request.Context(), data, fileHeader.Header.Get("Content-Type"), fileName)
	if err != nil {
		switch {
		case errors.Is(err, extract.ErrUnsupported), errors.Is(err, extract.ErrEmpty):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), []respond.FieldIssue{
				{Field: "file", Issue: "must be a PDF, DOCX or text document with readable text"},
			})
		default:
			respond.Error(c, http.StatusUnprocessableEntity, "unreadable_document", "unable to extract text from document", nil)
		}
		return "", false
	}
	return text, true
}

type askBenchRequest struct {
	CaseData    procurement.Case     `json:"case_data"`
	VerdictData bench.AnalysisResult `json:"verdict_data"`
	Question    string               `json:"question"`
}

func (h *Handler) askBench(c *gin.Context) {
	var req askBenchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	if err := procurement.Validate(req.CaseData); err != nil {
		respond.ValidationError(c, http.StatusBadRequest, err)
		return
	}
	c.Set("caseId", req.CaseData.TenderID)

	answer, err := h.Bench.CrossExamine(c.Request.Context(), req.Question, req.CaseData, req.VerdictData)
	if err != nil {
		benchError(c, err, "the bench could not answer")
		return
	}
	respond.OK(c, gin.H{"answer": answer})
}

func bindError(c *gin.Context, err error) {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", []respond.FieldIssue{
			{Field: typeErr.Field, Issue: "must be " + typeErr.Type.String()},
		})
		return
	}
	respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
}

func benchError(c *gin.Context, err error, message string) {
	switch {
	case errors.Is(err, procurement.ErrInvalidCase):
		respond.ValidationError(c, http.StatusBadRequest, err)
	case errors.Is(err, bench.ErrEmptyTender), errors.Is(err, bench.ErrEmptyQuestion):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "timeout", message, nil)
	case errors.Is(err, llm.ErrTransport):
		respond.Error(c, http.StatusBadGateway, "llm_unavailable", "model server unavailable", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", message, nil)
	}
}
