package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/trademint/backend/pkg/response"
)

// badRequest / notFound / forbidden / serverError write the envelope with the
// backend's detail text as data, matching the HTTP status to the envelope code.
func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, response.ErrorT[any](response.APIResponseCodeBadRequest, err.Error()))
}

func notFound(c *gin.Context, err error) {
	c.JSON(http.StatusNotFound, response.ErrorT[any](response.APIResponseCodeNotFound, err.Error()))
}

func forbidden(c *gin.Context, err error) {
	c.JSON(http.StatusForbidden, response.ErrorT[any](response.APIResponseCodeForbidden, err.Error()))
}

func serverError(c *gin.Context, err error) {
	c.JSON(http.StatusInternalServerError, response.ErrorT[any](response.APIResponseCodeError, err.Error()))
}
