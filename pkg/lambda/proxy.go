package lambda

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

// MaxBodySize caps request bodies accepted by FromHTTPRequest
const MaxBodySize = 6 << 20

// ErrBodyTooLarge is returned when a request body exceeds MaxBodySize or the
// limit set by an http.MaxBytesReader
var ErrBodyTooLarge = errors.New("request body too large")

// ProxyHandler is the shape of an API Gateway proxy integration
type ProxyHandler func(ctx context.Context, req events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error)

// FromHTTPRequest converts an incoming HTTP request into the event API Gateway
// would deliver for it. pathParams become the event's path parameters.
func FromHTTPRequest(r *http.Request, pathParams map[string]string) (events.APIGatewayProxyRequest, error) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod:                      r.Method,
		Path:                            r.URL.Path,
		Headers:                         map[string]string{},
		MultiValueHeaders:               map[string][]string{},
		QueryStringParameters:           map[string]string{},
		MultiValueQueryStringParameters: map[string][]string{},
		PathParameters:                  pathParams,
		RequestContext: events.APIGatewayProxyRequestContext{
			HTTPMethod: r.Method,
			Path:       r.URL.Path,
			Identity: events.APIGatewayRequestIdentity{
				SourceIP:  sourceIP(r),
				UserAgent: r.UserAgent(),
			},
		},
	}

	for name, values := range r.Header {
		event.Headers[name] = strings.Join(values, ",")
		event.MultiValueHeaders[name] = values
	}

	for name, values := range r.URL.Query() {
		event.QueryStringParameters[name] = values[len(values)-1]
		event.MultiValueQueryStringParameters[name] = values
	}

	if r.Body == nil {
		return event, nil
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, MaxBodySize+1))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return event, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, maxErr.Limit)
		}
		return event, fmt.Errorf("read request body: %w", err)
	}
	if len(body) > MaxBodySize {
		return event, fmt.Errorf("%w: limit is %d bytes", ErrBodyTooLarge, MaxBodySize)
	}

	if utf8.Valid(body) {
		event.Body = string(body)
	} else {
		event.Body = base64.StdEncoding.EncodeToString(body)
		event.IsBase64Encoded = true
	}

	return event, nil
}

// WriteResponse writes a proxy response back to an HTTP client
func WriteResponse(w http.ResponseWriter, resp events.APIGatewayProxyResponse) error {
	for name, value := range resp.Headers {
		w.Header().Set(name, value)
	}
	for name, values := range resp.MultiValueHeaders {
		for _, v := range values {
			w.Header().Add(name, v)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
		body = decoded
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	w.WriteHeader(status)
	_, err := w.Write(body)
	return err
}

func sourceIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host := r.RemoteAddr
	if i := strings.LastIndex(host, ":"); i > 0 {
		host = host[:i]
	}
	return host
}
