package evaluator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// ErrEmptyID is returned by GetConversation when called without an identifier.
var ErrEmptyID = errors.New("conversation id is empty")

// errNoBaseURL is wrapped in a NetworkError when the client has no endpoint.
var errNoBaseURL = errors.New("evaluator base url is not configured")

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 32 << 20

// Client reads conversations from the monitoring evaluator service.
type Client interface {
	ListConversations(ctx context.Context, opts ListOptions) ([]Conversation, error)
	CountConversations(ctx context.Context) (int, error)
	GetConversation(ctx context.Context, id string) (Conversation, error)
	Version(ctx context.Context) (string, error)
}

// ListOptions selects a page of the conversation list. A zero PageSize
// requests the whole list without pagination parameters.
type ListOptions struct {
	PageIndex int
	PageSize  int
}

// Options configures a client. BaseURL may be empty, in which case every call
// fails with a NetworkError.
type Options struct {
	BaseURL  string
	Timeout  time.Duration
	ProxyURL string
}

// NetworkError reports a request that did not complete successfully:
// transport failure, timeout, non-2xx status or an undecodable body.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	var sb strings.Builder
	sb.WriteString("evaluator ")
	sb.WriteString(e.Op)
	if e.URL != "" {
		sb.WriteString(" ")
		sb.WriteString(e.URL)
	}
	if e.StatusCode != 0 {
		fmt.Fprintf(&sb, ": status %d", e.StatusCode)
	}
	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}
	return sb.String()
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

type clientImpl struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient builds an evaluator client from explicit options.
func NewClient(logger *slog.Logger, opts Options) (Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10

	clientLogger := logger.With("component", "evaluator_client")

	if opts.ProxyURL != "" {
		proxy, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxy)

		safe := *proxy
		if safe.User != nil {
			safe.User = url.UserPassword(safe.User.Username(), "*****")
		}
		clientLogger.Info("Using proxy for evaluator", "proxy_url", safe.String())
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		clientLogger.Warn("Evaluator base URL is not configured; all requests will fail")
	}

	return &clientImpl{
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
		},
		baseURL: baseURL,
		logger:  clientLogger,
	}, nil
}

func (c *clientImpl) ListConversations(ctx context.Context, opts ListOptions) ([]Conversation, error) {
	query := url.Values{}
	if opts.PageSize > 0 {
		pageIndex := opts.PageIndex
		if pageIndex < 1 {
			pageIndex = 1
		}
		query.Set("pageIndex", strconv.Itoa(pageIndex))
		query.Set("pageSize", strconv.Itoa(opts.PageSize))
	}

	var conversations []Conversation
	if err := c.getJSON(ctx, opList, query, &conversations, "conversations"); err != nil {
		return nil, err
	}
	for i := range conversations {
		conversations[i].normalize()
	}
	c.logger.Debug("Listed conversations", "count", len(conversations))
	return conversations, nil
}

// CountConversations returns the number of conversations the evaluator holds.
func (c *clientImpl) CountConversations(ctx context.Context) (int, error) {
	var resp struct {
		Total int `json:"total"`
	}
	if err := c.getJSON(ctx, opCount, nil, &resp, "conversations", "count"); err != nil {
		return 0, err
	}
	return resp.Total, nil
}

func (c *clientImpl) GetConversation(ctx context.Context, id string) (Conversation, error) {
	if id == "" {
		return Conversation{}, ErrEmptyID
	}

	var conversation Conversation
	if err := c.getJSON(ctx, opGet, nil, &conversation, "conversations", id); err != nil {
		return Conversation{}, err
	}
	conversation.normalize()
	c.logger.Debug("Fetched conversation", "conversation_id", id, "records", len(conversation.Records))
	return conversation, nil
}

// Version returns the evaluator's version. The service answers with a bare
// JSON number or string.
func (c *clientImpl) Version(ctx context.Context) (string, error) {
	var raw json.RawMessage
	if err := c.getJSON(ctx, opVersion, nil, &raw, "version"); err != nil {
		return "", err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	return strings.TrimSpace(string(raw)), nil
}

// getJSON issues a single GET against baseURL joined with pathParts and
// decodes the body into dst. Every failure is reported as a *NetworkError.
func (c *clientImpl) getJSON(ctx context.Context, op string, query url.Values, dst any, pathParts ...string) (err error) {
	start := time.Now()
	defer func() {
		recordRequest(op, time.Since(start).Seconds(), err == nil)
	}()

	if c.baseURL == "" {
		return &NetworkError{Op: op, Err: errNoBaseURL}
	}

	escaped := make([]string, len(pathParts))
	for i, p := range pathParts {
		escaped[i] = url.PathEscape(p)
	}
	endpoint := c.baseURL + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "evalboard/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Evaluator request failed", "op", op, "url", endpoint, "error", err)
		return &NetworkError{Op: op, URL: endpoint, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Evaluator returned non-success status",
			"op", op,
			"url", endpoint,
			"status", resp.StatusCode,
			"body", truncateForLog(string(body), 200),
		)
		return &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: errors.New(http.StatusText(resp.StatusCode))}
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return &NetworkError{Op: op, URL: endpoint, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	c.logger.Debug("Evaluator request completed", "op", op, "url", endpoint, "duration", time.Since(start))
	return nil
}

// truncateForLog truncates a string to maxLen bytes for logging.
func truncateForLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "... (truncated)"
}
