package httpserver

import (
	"kofi-alerts/pkg/errors"
	"kofi-alerts/pkg/response"

	"github.com/gin-gonic/gin"
)

// lastAlert returns the most recent alert of the session, 404 before the first one.
func (srv *HTTPServer) lastAlert(c *gin.Context) {
	a := srv.status.LastAlert()
	if a == nil {
		response.HttpError(c, errors.NewNotFoundHTTPError("no alert received yet"))
		return
	}
	response.OK(c, a)
}

func (srv *HTTPServer) stats(c *gin.Context) {
	response.OK(c, srv.status.Stats())
}
