package server

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"google.golang.org/grpc/codes"

	"github.com/joseph-ayodele/procurement-tracker/internal/async"
	"github.com/joseph-ayodele/procurement-tracker/internal/common"
)

// statusClientClosed is nginx's code for a request abandoned by the client.
const statusClientClosed = 499

// httpStatus maps the error taxonomy onto HTTP through the same codes the gRPC surface uses.
func httpStatus(err error) int {
	switch {
	case errors.Is(err, async.ErrAlreadyQueued):
		return http.StatusConflict
	case errors.Is(err, async.ErrQueueFull), errors.Is(err, async.ErrQueueClosed):
		return http.StatusServiceUnavailable
	case errors.Is(err, context.Canceled):
		return statusClientClosed
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	switch common.Code(err) {
	case codes.OK:
		return http.StatusOK
	case codes.InvalidArgument:
		return http.StatusBadRequest
	case codes.NotFound:
		return http.StatusNotFound
	case codes.FailedPrecondition:
		return http.StatusUnprocessableEntity
	case codes.Unimplemented:
		return http.StatusNotImplemented
	case codes.Unavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) abort(c *gin.Context, err error) {
	status := httpStatus(err)
	log := common.LoggerFromContext(c.Request.Context(), h.log)
	if status >= 500 {
		log.Error("http.handler.failed", "path", c.FullPath(), "error", err)
	}
	body := gin.H{"error": err.Error()}
	var verr *common.ValidationError
	if errors.As(err, &verr) {
		body["fields"] = verr.Fields
		if verr.Partial != nil {
			body["partial"] = verr.Partial
		}
	}
	c.AbortWithStatusJSON(status, body)
}
