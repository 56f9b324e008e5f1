package main

// Build the API Lambda binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http
//
// The HTTP Lambda never runs the nudge scheduler; queue saves to SQS and let
// lambda-worker run the flow.

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"

	"placement-backend/internal/bootstrap"
	"placement-backend/internal/shared/config"
	"placement-backend/internal/shared/server/respond"
	"placement-backend/internal/shared/telemetry"
)

var (
	initOnce  sync.Once
	initErr   error
	ginLambda *ginadapter.GinLambdaV2
)

func initApp() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		initErr = err
		return
	}
	telemetry.Info("lambda.http.ready", map[string]any{
		"queue":       app.QueueBackend(),
		"state_store": cfg.StateStore,
	})
	ginLambda = ginadapter.NewV2(app.Router)
}

func handler(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
	initOnce.Do(initApp)
	if initErr != nil {
		telemetry.Error("lambda.http.bootstrap_failed", map[string]any{"error": initErr.Error()})
		return errorResponse("bootstrap failed"), initErr
	}
	if ginLambda == nil {
		return errorResponse("router not initialized"), nil
	}
	return ginLambda.ProxyWithContext(ctx, req)
}

func errorResponse(message string) events.APIGatewayV2HTTPResponse {
	body, _ := json.Marshal(respond.NewError(respond.CodeInternal, message))
	return events.APIGatewayV2HTTPResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       string(body),
		Headers:    map[string]string{"Content-Type": "application/json"},
	}
}

func main() {
	lambda.Start(handler)
}
