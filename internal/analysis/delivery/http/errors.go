package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"data-analyst-agent/internal/agent"
	"data-analyst-agent/internal/dataset"
	"data-analyst-agent/internal/session"
	"data-analyst-agent/pkg/response"
)

// mapError translates domain failures into user-facing responses. The
// message tells the user what to do next: rephrase the question, retry
// later, or fix the upload.
func (h handler) mapError(c *gin.Context, err error) {
	var planErr *agent.PlanValidationError
	var stepErr *agent.StepExecutionError

	switch {
	case errors.Is(err, session.ErrSessionNotFound):
		response.NotFound(c, "session not found")

	case errors.Is(err, agent.ErrInvalidInput):
		response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
			"Please provide a non-empty question.")

	case errors.Is(err, agent.ErrNoDatasetLoaded):
		response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
			"Please upload a dataset before asking questions.")

	case errors.Is(err, agent.ErrAskInProgress):
		response.ErrorWithStatus(c, http.StatusConflict, http.StatusConflict,
			"A question is already being answered for this session. Please wait for it to finish.")

	case errors.Is(err, dataset.ErrUnsupportedFormat):
		response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
			"Unsupported file format. Please upload a CSV, XLSX or XLS file.")

	case errors.Is(err, dataset.ErrSizeLimitExceeded):
		response.ErrorWithStatus(c, http.StatusRequestEntityTooLarge, http.StatusRequestEntityTooLarge,
			"The file is too large. Please upload a smaller file.")

	case errors.Is(err, dataset.ErrEmptyData):
		response.ErrorWithStatus(c, http.StatusBadRequest, http.StatusBadRequest,
			"The file contains no data. Please upload a file with at least a header row.")

	case errors.As(err, &planErr):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, http.StatusUnprocessableEntity,
			fmt.Sprintf("The question refers to columns not present in the data: %s. Try a different question.",
				strings.Join(planErr.Columns, ", ")))

	case errors.Is(err, agent.ErrPlanParse):
		response.ErrorWithStatus(c, http.StatusUnprocessableEntity, http.StatusUnprocessableEntity,
			"I couldn't work out how to answer that. Try rephrasing the question.")

	case errors.Is(err, agent.ErrPlannerUnavailable):
		response.ErrorWithStatus(c, http.StatusServiceUnavailable, http.StatusServiceUnavailable,
			"The analysis service is temporarily unavailable. Please try again later.")

	case errors.As(err, &stepErr):
		response.ErrorWithStatus(c, http.StatusBadGateway, http.StatusBadGateway,
			fmt.Sprintf("The analysis failed at step %d. Please try again later or rephrase the question.",
				stepErr.Step+1))

	default:
		h.l.Errorf(c.Request.Context(), "analysis http: unhandled error: %v", err)
		response.InternalError(c)
	}
}
