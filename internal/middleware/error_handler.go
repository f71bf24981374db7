package middleware

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/anyulbade/netaxept-gateway/internal/netaxept"
	"github.com/anyulbade/netaxept-gateway/internal/service"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// MapError turns a failed call into an HTTP status and body. Gateway business
// rejections never reach here: they are successful calls returning data.
func MapError(err error) (int, ErrorResponse) {
	var validation *service.ValidationError
	if errors.As(err, &validation) {
		return http.StatusBadRequest, ErrorResponse{Error: "validation failed", Details: validation.Error()}
	}

	if netaxept.IsUsageError(err) {
		return http.StatusBadRequest, ErrorResponse{Error: "invalid gateway request", Details: err.Error()}
	}

	var illegal *netaxept.IllegalTransitionError
	if errors.As(err, &illegal) {
		return http.StatusConflict, ErrorResponse{Error: "operation not allowed in current state", Details: illegal.Error()}
	}

	var malformed *netaxept.MalformedResponseError
	if errors.As(err, &malformed) {
		log.Error().Err(err).Str("body", malformed.Body).Msg("gateway protocol violation")
		return http.StatusBadGateway, ErrorResponse{Error: "unexpected gateway response"}
	}

	var transport *netaxept.TransportError
	if errors.As(err, &transport) {
		log.Warn().Err(err).Msg("gateway unreachable")
		var netErr net.Error
		if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
			return http.StatusGatewayTimeout, ErrorResponse{Error: "gateway timeout", Details: "the operation may have been applied; query the transaction before retrying"}
		}
		return http.StatusBadGateway, ErrorResponse{Error: "gateway unavailable", Details: "the operation may have been applied; query the transaction before retrying"}
	}

	if errors.Is(err, service.ErrJournalDisabled) {
		return http.StatusNotFound, ErrorResponse{Error: err.Error()}
	}

	return MapDBError(err)
}

func MapDBError(err error) (int, ErrorResponse) {
	if errors.Is(err, pgx.ErrNoRows) {
		return http.StatusNotFound, ErrorResponse{Error: "resource not found"}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return http.StatusConflict, ErrorResponse{
				Error:   "resource already exists",
				Details: pgErr.Detail,
			}
		case "23514": // check_violation
			return http.StatusBadRequest, ErrorResponse{
				Error:   "constraint violation",
				Details: pgErr.Detail,
			}
		}
	}

	log.Error().Err(err).Msg("unhandled error")
	return http.StatusInternalServerError, ErrorResponse{Error: "internal server error"}
}

func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && !c.Writer.Written() {
			err := c.Errors.Last().Err
			status, resp := MapError(err)
			c.JSON(status, resp)
		}
	}
}
