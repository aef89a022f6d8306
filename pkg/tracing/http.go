package tracing

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// GinMiddleware traces admin API requests. Requests whose path starts with
// one of the untraced prefixes, typically health probes and metric scrapes,
// produce no span.
func GinMiddleware(serviceName string, untraced []string, opts ...otelgin.Option) gin.HandlerFunc {
	opts = append([]otelgin.Option{
		otelgin.WithFilter(func(r *http.Request) bool {
			for _, prefix := range untraced {
				if strings.HasPrefix(r.URL.Path, prefix) {
					return false
				}
			}
			return true
		}),
		otelgin.WithSpanNameFormatter(AdminSpanName),
	}, opts...)
	return otelgin.Middleware(serviceName, opts...)
}

// AdminSpanName names a span after the matched route template so that
// "/api/v1/rules/stored/:id" stays one span name for every rule.
func AdminSpanName(c *gin.Context) string {
	route := c.FullPath()
	if route == "" {
		route = "unmatched"
	}
	return "admin " + c.Request.Method + " " + route
}
