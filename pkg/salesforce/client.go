package salesforce

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/tidwall/gjson"
)

const DefaultAPIVersion = "59.0"

// Client executes REST and Tooling queries against one Salesforce org.
// Authentication is out of scope: the caller supplies an instance URL and a
// valid access token.
type Client struct {
	instanceURL string
	accessToken string
	apiVersion  string
	http        *retryablehttp.Client
}

type Option func(*Client)

func WithAPIVersion(v string) Option {
	return func(c *Client) {
		if v != "" {
			c.apiVersion = v
		}
	}
}

// WithProxy routes all requests through an HTTP proxy, mostly useful for
// debugging.
func WithProxy(proxy string) Option {
	return func(c *Client) {
		if proxy == "" {
			return
		}
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return
		}
		c.http.HTTPClient.Transport = &http.Transport{Proxy: http.ProxyURL(proxyURL)}
	}
}

func New(instanceURL, accessToken string, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 3

	c := &Client{
		instanceURL: strings.TrimSuffix(instanceURL, "/"),
		accessToken: accessToken,
		apiVersion:  DefaultAPIVersion,
		http:        retryClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// get performs an authenticated GET against a path relative to the
// instance URL and returns the raw response body.
func (c *Client) get(ctx context.Context, path string) (string, error) {
	req, err := retryablehttp.NewRequest("GET", c.instanceURL+path, nil)
	if err != nil {
		return "", err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != 200 {
		return "", fmt.Errorf("salesforce API returned status %d: %s", resp.StatusCode, snippet(string(body)))
	}
	return string(body), nil
}

// Query runs a SOQL query against the REST API, following nextRecordsUrl
// pagination until the result set is exhausted.
func (c *Client) Query(ctx context.Context, soql string) ([]gjson.Result, error) {
	return c.queryPath(ctx, "/services/data/v"+c.apiVersion+"/query?q="+url.QueryEscape(soql))
}

// ToolingQuery is Query against the Tooling API.
func (c *Client) ToolingQuery(ctx context.Context, soql string) ([]gjson.Result, error) {
	return c.queryPath(ctx, "/services/data/v"+c.apiVersion+"/tooling/query?q="+url.QueryEscape(soql))
}

func (c *Client) queryPath(ctx context.Context, path string) ([]gjson.Result, error) {
	var records []gjson.Result
	for {
		body, err := c.get(ctx, path)
		if err != nil {
			return nil, err
		}
		records = append(records, gjson.Get(body, "records").Array()...)

		path = gjson.Get(body, "nextRecordsUrl").Str
		if path == "" {
			break
		}
	}
	return records, nil
}

// escapeSOQL escapes single quotes so opaque identifiers cannot break out
// of a string literal.
func escapeSOQL(s string) string {
	return strings.ReplaceAll(s, "'", "\\'")
}

// soqlIn renders a quoted IN (...) list.
func soqlIn(ids []string) string {
	quoted := make([]string, 0, len(ids))
	for _, id := range ids {
		quoted = append(quoted, "'"+escapeSOQL(id)+"'")
	}
	return "(" + strings.Join(quoted, ",") + ")"
}

func snippet(body string) string {
	body = strings.ReplaceAll(body, "\n", " ")
	if len(body) > 200 {
		return body[:200] + "..."
	}
	return body
}
