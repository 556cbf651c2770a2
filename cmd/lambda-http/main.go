package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"submission-backend/internal/bootstrap"
	"submission-backend/internal/shared/config"
	"submission-backend/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

// initApp runs once per cold start; the API key and storage backend come
// from the function's environment like the standalone server.
func initApp() {
	cfg := config.Load()
	telemetry.Init(cfg.LogLevel, cfg.LogFormat)
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	defer telemetry.Sync()

	if initErr != nil {
		telemetry.Error("bootstrap.failed", map[string]any{
			"error":      initErr,
			"request_id": req.RequestContext.RequestID,
		})
		return jsonError(http.StatusInternalServerError, `{"error":"Server configuration error"}`), initErr
	}
	if ginLambda == nil {
		return jsonError(http.StatusInternalServerError, `{"error":"Router not initialized"}`), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func jsonError(status int, body string) events.APIGatewayV2HTTPResponse {
	return events.APIGatewayV2HTTPResponse{
		StatusCode: status,
		Body:       body,
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
