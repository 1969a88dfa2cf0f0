package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/itsuki0625/react-ai-chatapp-sub000/internal/platform/apierr"
)

type APIError struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	msg := "unknown error"
	if err != nil {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{
		Error: APIError{
			Message: msg,
			Code:    code,
		},
	})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondErr writes err through apierr, using code unless err already carries one.
func RespondErr(c *gin.Context, code string, err error) {
	ae := apierr.From(err, code)
	RespondError(c, ae.Status, ae.Code, ae.Err)
}
