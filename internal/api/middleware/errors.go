package middleware

import (
	"github.com/gin-gonic/gin"

	"shopping-list-engine/internal/pkg/common"
)

// debugKey gin context 中是否輸出錯誤細節
const debugKey = "debug_errors"

// Debug 讓後續錯誤響應帶上 details
func Debug(enabled bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(debugKey, enabled)
		c.Next()
	}
}

// abortWithError 寫入錯誤響應並中止後續處理
func abortWithError(c *gin.Context, err error) {
	status, body := common.ToErrorResponse(err, c.GetBool(debugKey))
	c.AbortWithStatusJSON(status, body)
}

// RespondError 供 handler 使用的錯誤響應
func RespondError(c *gin.Context, err error) {
	_ = c.Error(err)
	abortWithError(c, err)
}
