package treatslambda

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/rs/zerolog/log"

	treats "github.com/weegigs/pearls-treats"
)

type GatewayHandler = func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// NewHandler serves the order page behind an API Gateway HTTP API.
func NewHandler(renderer *treats.Renderer) GatewayHandler {
	return func(ctx context.Context, event events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		if method := event.RequestContext.HTTP.Method; method != "" && method != http.MethodGet {
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusMethodNotAllowed,
				Headers:    map[string]string{"Allow": http.MethodGet},
			}, nil
		}

		document, err := renderer.Render(ctx, Headers(event))
		if err != nil {
			log.Error().Err(err).Str("request", event.RequestContext.RequestID).Msg("failed to render page")
			return events.APIGatewayV2HTTPResponse{StatusCode: http.StatusInternalServerError}, nil
		}

		return events.APIGatewayV2HTTPResponse{
			StatusCode: http.StatusOK,
			Headers:    map[string]string{"Content-Type": "text/html; charset=utf-8"},
			Body:       string(document.Body),
		}, nil
	}
}

// Headers converts the gateway's lower cased header map into canonical form.
func Headers(event events.APIGatewayV2HTTPRequest) http.Header {
	headers := make(http.Header, len(event.Headers))
	for name, value := range event.Headers {
		headers.Set(name, value)
	}

	return headers
}
