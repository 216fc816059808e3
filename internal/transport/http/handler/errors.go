package handler

import (
	"net/http"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"plantid/internal/transport/http/response"
)

// internalError logs the cause, reports it to Sentry when the request carries
// a hub and answers with a generic 500.
func internalError(c *gin.Context, err error, message string) {
	serverError(c, http.StatusInternalServerError, response.CodeInternalServer, err, message)
}

func serverError(c *gin.Context, status, code int, err error, message string) {
	log.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg(message)
	_ = c.Error(err)
	if hub := sentrygin.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}
	response.Error(c, status, code, message)
}
