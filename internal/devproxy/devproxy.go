// Package devproxy adapts gin requests into API Gateway proxy events so the
// Lambda handler can run behind a local HTTP server.
package devproxy

import (
	"context"
	"io"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gin-gonic/gin"
)

const maxBodyBytes = 1 << 20

type LambdaFunc func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// Handler forwards every request to fn and writes its response back.
func Handler(fn LambdaFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "INVALID_INPUT"})
			return
		}

		resp, err := fn(c.Request.Context(), toEvent(c, string(body)))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL_ERROR"})
			return
		}
		for k, v := range resp.Headers {
			c.Header(k, v)
		}
		contentType := resp.Headers["Content-Type"]
		if contentType == "" {
			contentType = "application/json"
		}
		c.Data(resp.StatusCode, contentType, []byte(resp.Body))
	}
}

func toEvent(c *gin.Context, body string) events.APIGatewayProxyRequest {
	headers := make(map[string]string, len(c.Request.Header))
	for k := range c.Request.Header {
		headers[k] = c.Request.Header.Get(k)
	}
	query := make(map[string]string)
	for k, v := range c.Request.URL.Query() {
		if len(v) > 0 {
			query[k] = v[0]
		}
	}
	return events.APIGatewayProxyRequest{
		HTTPMethod:            c.Request.Method,
		Path:                  c.Request.URL.Path,
		Headers:               headers,
		QueryStringParameters: query,
		Body:                  body,
		RequestContext: events.APIGatewayProxyRequestContext{
			Identity: events.APIGatewayRequestIdentity{SourceIP: c.ClientIP()},
		},
	}
}
