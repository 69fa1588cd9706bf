package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	CodeSuccess     = 0
	CodeParamError  = 400
	CodeServerError = 500
)

// Business codes. Clients branch on these, never on free-form message
// text, so every failure in the core error taxonomy gets its own code.
const (
	CodeInvalidCredential  = 1001
	CodeAssetNotFound      = 1002
	CodeAlreadyOwned       = 1003
	CodeInsufficientFunds  = 1004
	CodeUnauthorized       = 1005
	CodeInvalidAmount      = 1006
	CodeStorageUnavailable = 1007
	CodeDuplicateAsset     = 1008
)

type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
	})
}

// BusinessError reports a typed failure along with extra data the
// client can render (e.g. the current balance on a refused purchase).
func BusinessError(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    code,
		Message: message,
		Data:    data,
	})
}

func ParamError(c *gin.Context, message string) {
	Error(c, CodeParamError, message)
}

func ServerError(c *gin.Context, message string) {
	Error(c, CodeServerError, message)
}
