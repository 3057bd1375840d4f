package http

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/config"
	"github.com/kardolus/lms-reports/internal"
	"go.uber.org/zap"
)

const (
	errFailedToMakeRequest = "failed to make request: %w"
	errHTTP                = "http status %d: %s"
	errHTTPStatus          = "http status: %d"
)

//go:generate mockgen -destination=callermocks_test.go -package=client_test github.com/kardolus/lms-reports/api/http Caller
type Caller interface {
	Get(ctx context.Context, url string, params url.Values) (api.HTTPResponse, error)
}

type RestCaller struct {
	client *resty.Client
	config config.Config
}

// Ensure RestCaller implements Caller interface
var _ Caller = &RestCaller{}

// New builds a caller that authenticates with the bearer token, applies the
// configured per-call timeout and retries transport failures, 429 and 5xx
// responses with exponential backoff.
func New(cfg config.Config, token string) *RestCaller {
	client := resty.New()

	if cfg.SkipTLSVerify {
		client.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}
	if cfg.Timeout > 0 {
		client.SetTimeout(time.Duration(cfg.Timeout) * time.Second)
	}
	if token != "" {
		client.SetHeader(cfg.AuthHeader, internal.AuthTokenPrefix+token)
	}

	client.SetHeader(internal.HeaderAcceptKey, internal.HeaderAcceptValue)
	client.SetHeader(internal.HeaderUserAgentKey, cfg.UserAgent)

	client.SetRetryCount(cfg.MaxRetries)
	client.SetRetryWaitTime(time.Duration(cfg.RetryWait) * time.Millisecond)
	client.SetRetryMaxWaitTime(time.Duration(cfg.RetryMaxWait) * time.Millisecond)
	client.AddRetryCondition(shouldRetry)
	client.AddRetryHook(func(res *resty.Response, err error) {
		if res == nil {
			zap.S().Warnf("retrying request [err=%v]", err)
			return
		}
		zap.S().Warnf("retrying request [url=%s] [attempt=%d] [status=%d] [err=%v]", res.Request.URL, res.Request.Attempt, res.StatusCode(), err)
	})

	return &RestCaller{
		client: client,
		config: cfg,
	}
}

type CallerFactory func(cfg config.Config, token string) Caller

func RealCallerFactory(cfg config.Config, token string) Caller {
	return New(cfg, token)
}

// Get issues one GET. A non-2xx status is returned as an error together
// with the response so callers can still inspect the body.
func (r *RestCaller) Get(ctx context.Context, url string, params url.Values) (api.HTTPResponse, error) {
	req := r.client.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}

	res, err := req.Get(url)
	if err != nil {
		return api.HTTPResponse{}, fmt.Errorf(errFailedToMakeRequest, err)
	}

	response := api.HTTPResponse{
		Status:  res.StatusCode(),
		URL:     res.Request.URL,
		Headers: flattenHeaders(res.Header()),
		Body:    res.Body(),
	}

	if response.Status < 200 || response.Status >= 300 {
		var errorData api.ErrorResponse
		if err := json.Unmarshal(response.Body, &errorData); err != nil || errorData.Text() == "" {
			return response, fmt.Errorf(errHTTPStatus, response.Status)
		}
		return response, fmt.Errorf(errHTTP, response.Status, errorData.Text())
	}

	return response, nil
}

func shouldRetry(res *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if res == nil {
		return false
	}
	return res.StatusCode() == http.StatusTooManyRequests || res.StatusCode() >= http.StatusInternalServerError
}

func flattenHeaders(headers http.Header) map[string]string {
	result := make(map[string]string, len(headers))
	for k, values := range headers {
		result[k] = strings.Join(values, ", ")
	}
	return result
}
