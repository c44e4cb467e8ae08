package middleware

import (
	"net/http"

	"shopping-list-engine/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ErrPayloadTooLarge 請求體超過上限
var ErrPayloadTooLarge = common.NewError("PAYLOAD_TOO_LARGE", "請求體過大", http.StatusRequestEntityTooLarge, nil)

// BodySizeLimit 限制請求體大小的中間件
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 檢查 Content-Length
		if c.Request.ContentLength > maxSize {
			common.LogWarn("Request body too large",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("client_ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			abortWithError(c, ErrPayloadTooLarge)
			return
		}

		// 未帶 Content-Length 時由 MaxBytesReader 把關
		if c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		}

		c.Next()
	}
}
