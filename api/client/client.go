package client

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kardolus/lms-reports/api"
	"github.com/kardolus/lms-reports/api/http"
	"github.com/kardolus/lms-reports/config"
	"github.com/kardolus/lms-reports/internal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const (
	errFetchPage       = "failed to fetch page %d of %s: %w"
	errDecodePage      = "failed to decode page %d of %s: %w"
	errPaginationCycle = "pagination cycle detected at page %d: %s was already requested"
	httpScheme         = "http://"
	httpsScheme        = "https://"
)

var tracer = otel.Tracer("lms-reports/api/client")

type Client struct {
	Config config.Config
	caller http.Caller
}

func New(callerFactory http.CallerFactory, cfg config.Config, token string) *Client {
	return &Client{
		Config: cfg,
		caller: callerFactory(cfg, token),
	}
}

// FetchAll retrieves every page of a collection resource and returns the
// records in page order, then in intra-page order.
//
// The first request carries params; every following request goes to the
// server supplied "next" link exactly as given, since those links already
// encode the full query. When whitelist is non-empty each record is reduced
// to exactly those fields before it is appended.
//
// Any failed page aborts the whole fetch: the error names the page and URL
// and no partial result is returned. A resource without records yields an
// empty, non-nil ResultSet.
func (c *Client) FetchAll(ctx context.Context, path string, params url.Values, whitelist []string) (api.ResultSet, error) {
	location := c.resolve(path)

	ctx, span := tracer.Start(ctx, "client:FetchAll", trace.WithAttributes(
		attribute.String("lms.url", location),
	))
	defer span.End()

	sugar := zap.S()
	sugar.Infof("\tRequest Initiated [url=%s]", location)

	result := api.ResultSet{}
	visited := make(map[string]bool)
	page := 0

	for {
		page++

		requestKey := location + "?" + params.Encode()
		if visited[requestKey] {
			err := fmt.Errorf(errPaginationCycle, page, location)
			span.RecordError(err)
			span.SetStatus(codes.Error, "pagination cycle")
			return nil, err
		}
		visited[requestKey] = true

		if c.Config.Debug {
			c.printRequestDebugInfo(location, params)
		}

		res, err := c.caller.Get(ctx, location, params)
		if c.Config.Debug {
			c.printResponseDebugInfo(res)
		}
		if err != nil {
			sugar.Errorf("\tRequest Failed [page=%d] [url=%s] [status=%d]", page, location, res.Status)
			span.RecordError(err)
			span.SetStatus(codes.Error, "page request failed")
			return nil, fmt.Errorf(errFetchPage, page, location, err)
		}

		records, err := api.DecodeRecords(res.Body)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "page decode failed")
			return nil, fmt.Errorf(errDecodePage, page, location, err)
		}

		for _, record := range records {
			if len(whitelist) > 0 {
				record = record.Project(whitelist)
			}
			result = append(result, record)
		}

		sugar.Infof("\tRequest In Progress [page=%d] [url=%s] [response_code=%d] [records=%d]", page, location, res.Status, len(records))
		span.AddEvent("page", trace.WithAttributes(
			attribute.Int("lms.page", page),
			attribute.Int("lms.records", len(records)),
			attribute.Int("http.status_code", res.Status),
		))

		next, ok := api.ParseLinkHeader(res.Header(internal.HeaderLinkKey))[api.RelNext]
		if !ok {
			break
		}

		sugar.Debugf("\tFollowing next link [page=%d] [next=%s]", page, next)
		location = c.resolve(next)
		params = nil
	}

	sugar.Infof("\tRequest Completed [pages=%d] [total_size=%d]", page, len(result))
	span.SetAttributes(
		attribute.Int("lms.pages", page),
		attribute.Int("lms.records", len(result)),
	)

	return result, nil
}

// Fetch runs FetchAll for a prepared request.
func (c *Client) Fetch(ctx context.Context, req api.Request) (api.ResultSet, error) {
	return c.FetchAll(ctx, req.Path, req.Params, req.Whitelist)
}

func (c *Client) resolve(path string) string {
	if strings.HasPrefix(path, httpScheme) || strings.HasPrefix(path, httpsScheme) {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.Config.APIBaseURL() + path
}
