package middleware

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"bento-planner/internal/pkg/common"
)

// BodySizeLimit 限制食譜上傳的請求體大小。無內容的請求直接放行；
// 未宣告長度時由 MaxBytesReader 截斷，讀取失敗交由 handlers.BindJSON 回應 413
func BodySizeLimit(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body == nil || c.Request.Body == http.NoBody {
			c.Next()
			return
		}

		if c.Request.ContentLength > maxSize {
			common.LogWarn("請求內容過大",
				zap.Int64("content_length", c.Request.ContentLength),
				zap.Int64("max_size", maxSize),
				zap.String("ip", c.ClientIP()),
				zap.String("path", c.Request.URL.Path),
			)
			err := common.ErrRequestTooLarge.Wrap(fmt.Errorf("content length %d exceeds %d bytes", c.Request.ContentLength, maxSize))
			status, resp := common.ToResponse(err, false)
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)

		c.Next()
	}
}
