package middleware

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
)

// RequestLogger is gin's access log with the stream's ?token= value masked.
func RequestLogger() gin.HandlerFunc {
	return gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: func(param gin.LogFormatterParams) string {
			return fmt.Sprintf("[GIN] %v | %3d | %13v | %15s | %-7s %#v\n%s",
				param.TimeStamp.Format("2006/01/02 - 15:04:05"),
				param.StatusCode,
				param.Latency,
				param.ClientIP,
				param.Method,
				redactToken(param.Path),
				param.ErrorMessage,
			)
		},
	})
}

func redactToken(path string) string {
	i := strings.IndexByte(path, '?')
	if i < 0 {
		return path
	}
	query, err := url.ParseQuery(path[i+1:])
	if err != nil {
		return path[:i]
	}
	if _, ok := query["token"]; !ok {
		return path
	}
	query.Set("token", "REDACTED")
	return path[:i+1] + query.Encode()
}
