// Package serverless runs the fiber app behind API Gateway proxy events.
package serverless

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
	"github.com/gofiber/fiber/v2"
)

// Handler adapts API Gateway proxy events to a fiber app.
type Handler struct {
	app *fiber.App
}

// NewHandler wraps app.
func NewHandler(app *fiber.App) *Handler {
	return &Handler{app: app}
}

// Handle serves one proxy event. It is the function passed to lambda.Start.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	req, err := NewRequest(ctx, event)
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}

	resp, err := h.app.Test(req, timeoutMillis(ctx))
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to serve request: %w", err)
	}
	defer resp.Body.Close()

	return NewResponse(resp)
}

// NewRequest builds the http.Request described by event.
func NewRequest(ctx context.Context, event events.APIGatewayProxyRequest) (*http.Request, error) {
	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to decode request body: %w", err)
		}
		body = decoded
	}

	query := url.Values{}
	for k, vs := range event.MultiValueQueryStringParameters {
		query[k] = append([]string(nil), vs...)
	}
	for k, v := range event.QueryStringParameters {
		if _, ok := query[k]; !ok {
			query.Set(k, v)
		}
	}

	path := event.Path
	if path == "" {
		path = "/"
	}
	host := event.Headers["Host"]
	if host == "" {
		host = "localhost"
	}
	target := url.URL{Scheme: "http", Host: host, Path: path, RawQuery: query.Encode()}

	method := event.HTTPMethod
	if method == "" {
		method = http.MethodGet
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	for k, vs := range event.MultiValueHeaders {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for k, v := range event.Headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	if ip := event.RequestContext.Identity.SourceIP; ip != "" {
		req.RemoteAddr = ip + ":0"
	}
	req.ContentLength = int64(len(body))
	if len(body) > 0 {
		req.Header.Set("Content-Length", strconv.Itoa(len(body)))
	}
	return req, nil
}

// NewResponse converts resp into a proxy response. Bodies that are not valid UTF-8 are base64 encoded.
func NewResponse(resp *http.Response) (events.APIGatewayProxyResponse, error) {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("failed to read response body: %w", err)
	}

	out := events.APIGatewayProxyResponse{
		StatusCode:        resp.StatusCode,
		Headers:           make(map[string]string, len(resp.Header)),
		MultiValueHeaders: make(map[string][]string, len(resp.Header)),
	}
	for k, vs := range resp.Header {
		out.Headers[k] = strings.Join(vs, ", ")
		out.MultiValueHeaders[k] = vs
	}

	if utf8.Valid(body) {
		out.Body = string(body)
	} else {
		out.Body = base64.StdEncoding.EncodeToString(body)
		out.IsBase64Encoded = true
	}
	return out, nil
}

func timeoutMillis(ctx context.Context) int {
	deadline, ok := ctx.Deadline()
	if !ok {
		return -1
	}
	ms := time.Until(deadline).Milliseconds()
	if ms <= 0 {
		return 1
	}
	return int(ms)
}
