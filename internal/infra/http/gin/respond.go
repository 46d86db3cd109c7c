package ginserver

import (
	"log/slog"
	"net/http"

	gin "github.com/gin-gonic/gin"

	"stayfinder/internal/domain/shared/fault"
)

type envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func respondData(c *gin.Context, code int, data any) {
	c.JSON(code, envelope{Status: "success", Data: data})
}

func respondMessage(c *gin.Context, code int, message string) {
	c.JSON(code, envelope{Status: "success", Message: message})
}

func respondErrorMessage(c *gin.Context, code int, message string) {
	c.JSON(code, envelope{Status: "error", Message: message})
}

// respondError maps a failure to a status code via its fault kind. Unknown
// failures surface as a generic 500; the detail goes to the log only.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	kind := fault.KindOf(err)
	code := statusForKind(kind)
	if code == http.StatusInternalServerError {
		if logger != nil {
			logger.Error("request failed", "method", c.Request.Method, "path", c.Request.URL.Path, "error", err)
		}
		respondErrorMessage(c, code, "internal error")
		return
	}
	respondErrorMessage(c, code, err.Error())
}

func statusForKind(kind fault.Kind) int {
	switch kind {
	case fault.KindNotFound:
		return http.StatusNotFound
	case fault.KindUnauthorized:
		return http.StatusUnauthorized
	case fault.KindForbidden:
		return http.StatusForbidden
	case fault.KindConflict:
		return http.StatusConflict
	case fault.KindInvalidState,
		fault.KindInvalidDateRange,
		fault.KindCapacityExceeded,
		fault.KindDateConflict,
		fault.KindValidation:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
