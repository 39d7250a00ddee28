package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"data-analyst-agent/pkg/response"
)

const (
	defaultPreviewRows = 10

	// defaultMaxUploadBytes matches the orchestrator's dataset size limit.
	defaultMaxUploadBytes = 10 << 20
)

// CreateSession godoc
// @Summary     Create an analysis session
// @Description Opens a new conversation session. Upload a dataset to it before asking questions.
// @Tags        Sessions
// @Produce     json
// @Success     200 {object} response.Resp
// @Router      /api/v1/sessions [POST]
func (h *handler) CreateSession(c *gin.Context) {
	id := h.sessions.Create(c.Request.Context())
	response.OK(c, createSessionResp{SessionID: id})
}

// DeleteSession godoc
// @Summary     Delete an analysis session
// @Tags        Sessions
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} response.Resp
// @Failure     404 {object} response.Resp "Session not found"
// @Router      /api/v1/sessions/{session_id} [DELETE]
func (h *handler) DeleteSession(c *gin.Context) {
	if err := h.sessions.Delete(c.Request.Context(), c.Param("session_id")); err != nil {
		h.mapError(c, err)
		return
	}
	response.OK(c, nil)
}

// UploadDataset godoc
// @Summary     Upload a dataset
// @Description Loads a CSV, XLSX or XLS file into the session, replacing any previous dataset and clearing the conversation.
// @Tags        Datasets
// @Accept      multipart/form-data
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Param       file formData file true "Tabular data file"
// @Success     200 {object} response.Resp
// @Failure     400 {object} response.Resp "Unsupported format or empty file"
// @Failure     413 {object} response.Resp "File too large"
// @Router      /api/v1/sessions/{session_id}/dataset [POST]
func (h *handler) UploadDataset(c *gin.Context) {
	ctx := c.Request.Context()

	o, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.mapError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
			"Please attach a data file in the 'file' form field.")
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		h.l.Errorf(ctx, "analysis http: open upload: %v", err)
		response.InternalError(c)
		return
	}
	defer f.Close()

	// Read one byte past the limit so LoadDataset's size gate still fires
	// on oversized files without buffering the whole upload.
	raw, err := io.ReadAll(io.LimitReader(f, h.maxUploadBytes+1))
	if err != nil {
		h.l.Errorf(ctx, "analysis http: read upload: %v", err)
		response.InternalError(c)
		return
	}

	summary, err := o.LoadDataset(ctx, raw, formatFromFilename(fileHeader.Filename))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.OK(c, uploadResp{Schema: summary})
}

// GetSchema godoc
// @Summary     Get the dataset schema
// @Tags        Datasets
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} response.Resp
// @Failure     400 {object} response.Resp "No dataset loaded"
// @Router      /api/v1/sessions/{session_id}/schema [GET]
func (h *handler) GetSchema(c *gin.Context) {
	o, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	summary, err := o.Schema()
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.OK(c, uploadResp{Schema: summary})
}

// Preview godoc
// @Summary     Preview the dataset
// @Description Returns the column names and the first rows of the loaded dataset.
// @Tags        Datasets
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Param       rows query int false "Number of rows to return (default 10)"
// @Success     200 {object} response.Resp
// @Failure     400 {object} response.Resp "No dataset loaded"
// @Router      /api/v1/sessions/{session_id}/preview [GET]
func (h *handler) Preview(c *gin.Context) {
	o, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.mapError(c, err)
		return
	}

	n := defaultPreviewRows
	if v := c.Query("rows"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 0 {
			response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
				"rows must be a non-negative integer")
			return
		}
		n = parsed
	}

	cols, rows, err := o.Preview(n)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.OK(c, previewResp{Columns: cols, Rows: rows})
}

// Ask godoc
// @Summary     Ask a question about the dataset
// @Description Answers a natural-language question by planning and running an analysis pipeline, optionally with a chart.
// @Tags        Analysis
// @Accept      json
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Param       body body askReq true "Question"
// @Success     200 {object} response.Resp
// @Failure     400 {object} response.Resp "No dataset loaded or empty question"
// @Failure     409 {object} response.Resp "Another question is in flight"
// @Failure     422 {object} response.Resp "The question could not be planned"
// @Failure     503 {object} response.Resp "Reasoning service unavailable"
// @Router      /api/v1/sessions/{session_id}/ask [POST]
func (h *handler) Ask(c *gin.Context) {
	ctx := c.Request.Context()

	o, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.mapError(c, err)
		return
	}

	var req askReq
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
			"Please provide a non-empty question.")
		return
	}

	ans, err := o.Ask(ctx, req.Question)
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.OK(c, newAskResp(ans))
}

// History godoc
// @Summary     Get the conversation history
// @Description Returns the retained turns of the session, oldest first.
// @Tags        Analysis
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} response.Resp
// @Router      /api/v1/sessions/{session_id}/history [GET]
func (h *handler) History(c *gin.Context) {
	o, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	response.OK(c, newHistoryResp(o.History()))
}

// ClearConversation godoc
// @Summary     Clear the conversation history
// @Description Drops the turn history but keeps the loaded dataset.
// @Tags        Analysis
// @Produce     json
// @Param       session_id path string true "Session ID"
// @Success     200 {object} response.Resp
// @Router      /api/v1/sessions/{session_id}/history [DELETE]
func (h *handler) ClearConversation(c *gin.Context) {
	o, err := h.sessions.Get(c.Param("session_id"))
	if err != nil {
		h.mapError(c, err)
		return
	}
	o.ClearConversation()
	response.OK(c, nil)
}

// formatFromFilename derives the dataset format from the upload's
// extension.
func formatFromFilename(name string) string {
	i := strings.LastIndex(name, ".")
	if i < 0 {
		return ""
	}
	return strings.ToLower(name[i+1:])
}
