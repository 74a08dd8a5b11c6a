package response

import (
	"net/http"
	"order_trade_core/pkg/errs"

	"github.com/gin-gonic/gin"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`    // 业务码
	Message string      `json:"message"` // 提示信息
	Data    interface{} `json:"data"`    // 数据
}

// Success 成功响应
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeSuccess,
		Message: "success",
		Data:    data,
	})
}

// Error 错误响应
func Error(c *gin.Context, httpCode int, errCode int, msg string) {
	c.JSON(httpCode, Response{
		Code:    errCode,
		Message: msg,
		Data:    nil,
	})
}

// FromError 按错误分类映射 HTTP 状态和业务码
// 交易接口统一走这里，保证失败响应带稳定的 kind
func FromError(c *gin.Context, err error) {
	httpCode, errCode := classify(err)
	Error(c, httpCode, errCode, err.Error())
}

func classify(err error) (int, int) {
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest, codeFor(err, ErrInvalidParam)
	case errs.KindConflict:
		return http.StatusConflict, codeFor(err, ErrConflict)
	case errs.KindNotFound:
		return http.StatusNotFound, codeFor(err, ErrNotFound)
	case errs.KindInvalidTransition:
		return http.StatusBadRequest, ErrDeliveryTransition
	case errs.KindRetryableGateway:
		// 网关瞬时故障，调用方可带退避重试
		return http.StatusBadGateway, ErrGatewayRetryable
	default:
		return http.StatusInternalServerError, ErrServerInternal
	}
}
