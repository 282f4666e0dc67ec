package restx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lanonasis/lanonasis-maas-sub005/pkg/errx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/logx"
	"github.com/lanonasis/lanonasis-maas-sub005/pkg/retryx"
	"github.com/oklog/ulid/v2"
)

// NewRequestID returns a fresh, lexically sortable request id.
func NewRequestID() string {
	return ulid.Make().String()
}

type Meta struct {
	RequestID string        `json:"requestId"`
	Duration  time.Duration `json:"duration"`
	Retries   int           `json:"retries"`
}

// Envelope is the outcome of one logical call. Exactly one of Data and
// Error is set.
type Envelope[T any] struct {
	Data  *T          `json:"data,omitempty"`
	Error *errx.Error `json:"error,omitempty"`
	Meta  Meta        `json:"meta"`
}

// Err returns the envelope error as a plain error, nil on success.
func (e Envelope[T]) Err() error {
	if e.Error == nil {
		return nil
	}
	return e.Error
}

// OK reports success.
func (e Envelope[T]) OK() bool {
	return e.Error == nil && e.Data != nil
}

// Failed builds an error envelope without touching the network.
func Failed[T any](err error) Envelope[T] {
	e := errx.From(err)
	return Envelope[T]{Error: e, Meta: Meta{RequestID: e.RequestID}}
}

type RequestOptions struct {
	Method     string
	Body       any
	Query      url.Values
	Headers    map[string]string
	Timeout    time.Duration
	MaxRetries *int
	// SkipTenancy disables organization/user injection for this call.
	SkipTenancy bool
}

// Do runs one logical request through the pipeline: header assembly,
// tenancy injection, per-attempt timeout, error mapping and retry.
// It never panics and never returns a raw error.
func Do[T any](ctx context.Context, c *Client, endpoint string, opts RequestOptions) (env Envelope[T]) {
	start := time.Now()
	requestID := c.cfg.NewRequestID()
	env.Meta.RequestID = requestID
	defer func() {
		env.Meta.Duration = time.Since(start)
		if r := recover(); r != nil {
			env.Data = nil
			env.Error = errx.Newf(errx.CodeAPI, "request pipeline failure: %v", r).WithRequestID(requestID)
		}
		if env.Error != nil {
			env.Data = nil
			c.fireError(env.Error)
		}
	}()

	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
	}

	target := c.URL(endpoint)
	if len(opts.Query) > 0 {
		target += "?" + opts.Query.Encode()
	}

	body, err := c.encodeBody(opts)
	if err != nil {
		env.Error = errx.Wrap(err, "could not encode request body", errx.CodeValidation).WithRequestID(requestID)
		return env
	}

	maxRetries := c.cfg.Retry.MaxRetries
	if opts.MaxRetries != nil {
		maxRetries = max(*opts.MaxRetries, 0)
	}
	timeout := c.cfg.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}

	for attempt := 0; ; attempt++ {
		env.Meta.Retries = attempt
		headers := c.headers(requestID, opts.Headers)

		data, apiErr := attemptOnce[T](ctx, c, method, target, body, headers, timeout, requestID, attempt)
		if apiErr == nil {
			env.Data = data
			return env
		}
		apiErr.RequestID = requestID

		if ctx.Err() != nil {
			env.Error = errx.Wrap(ctx.Err(), "request aborted", errx.From(ctx.Err()).Code).WithRequestID(requestID)
			return env
		}
		if !shouldRetry(apiErr) || attempt >= maxRetries {
			env.Error = apiErr
			return env
		}

		delay := c.cfg.Retry.Delay(attempt)
		logx.WithFields(logx.Fields{
			"request_id": requestID,
			"attempt":    attempt + 1,
			"code":       apiErr.Code,
		}).Debugf("retrying %s %s in %s", method, endpoint, delay)

		if err := c.cfg.Sleep(ctx, delay); err != nil {
			env.Error = errx.Wrap(err, "request aborted", errx.From(err).Code).WithRequestID(requestID)
			return env
		}
	}
}

func shouldRetry(e *errx.Error) bool {
	if e.StatusCode != 0 {
		return retryx.IsRetryable(e.StatusCode)
	}
	return e.Retryable()
}

func attemptOnce[T any](
	ctx context.Context,
	c *Client,
	method, target string,
	body []byte,
	headers http.Header,
	timeout time.Duration,
	requestID string,
	attempt int,
) (*T, *errx.Error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(actx, method, target, reader)
	if err != nil {
		return nil, errx.Wrap(err, "could not build request", errx.CodeAPI)
	}
	req.Header = headers

	c.fireRequest(RequestInfo{Method: method, URL: target, RequestID: requestID, Attempt: attempt})

	started := time.Now()
	resp, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, actx, err, timeout)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, actx, err, timeout)
	}

	c.fireResponse(ResponseInfo{
		RequestID: requestID,
		Status:    resp.StatusCode,
		Duration:  time.Since(started),
		Attempt:   attempt,
	})

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, parseErrorBody(resp, raw)
	}

	out := new(T)
	if resp.StatusCode == http.StatusNoContent || len(bytes.TrimSpace(raw)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return nil, errx.Wrap(err, "invalid response body", errx.CodeAPI).WithStatus(resp.StatusCode)
	}
	return out, nil
}

func transportError(parent, attemptCtx context.Context, err error, timeout time.Duration) *errx.Error {
	if parent.Err() == nil && errors.Is(attemptCtx.Err(), context.DeadlineExceeded) {
		return errx.Wrap(err, fmt.Sprintf("request timed out after %s", timeout), errx.CodeTimeout)
	}
	return errx.From(err)
}

type errorBody struct {
	Code    string          `json:"code"`
	Message string          `json:"message"`
	Error   json.RawMessage `json:"error"`
	Details json.RawMessage `json:"details"`
}

// parseErrorBody maps a non-2xx response to an error. The code always
// follows the status; the body only contributes message and details.
func parseErrorBody(resp *http.Response, raw []byte) *errx.Error {
	status := resp.StatusCode
	message := ""
	var fields []errx.FieldError
	var details map[string]any

	mediaType, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if strings.Contains(mediaType, "json") {
		var b errorBody
		if err := json.Unmarshal(raw, &b); err == nil {
			message = b.Message
			if message == "" && len(b.Error) > 0 {
				message = errorText(b.Error)
			}
			fields, details = parseDetails(b.Details)
		}
	} else if text := strings.TrimSpace(string(raw)); text != "" {
		message = truncate(text, 500)
	}
	if message == "" {
		message = http.StatusText(status)
	}

	e := errx.FromStatus(status, message)
	e.Fields = fields
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

func errorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

func parseDetails(raw json.RawMessage) ([]errx.FieldError, map[string]any) {
	if len(raw) == 0 {
		return nil, nil
	}
	var fields []errx.FieldError
	if err := json.Unmarshal(raw, &fields); err == nil {
		return fields, nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err == nil {
		return nil, m
	}
	return nil, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// encodeBody marshals the body and adds organization_id / user_id to JSON
// objects that lack them.
func (c *Client) encodeBody(opts RequestOptions) ([]byte, error) {
	if opts.Body == nil {
		return nil, nil
	}
	raw, err := json.Marshal(opts.Body)
	if err != nil {
		return nil, err
	}
	if opts.SkipTenancy {
		return raw, nil
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return raw, nil
	}
	t := c.tenancy()
	if t.empty() {
		return raw, nil
	}
	return injectTenancy(raw, t)
}

func injectTenancy(raw []byte, t Tenancy) ([]byte, error) {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	changed := false
	set := func(key, value string) {
		if value == "" || present(obj[key]) {
			return
		}
		obj[key], _ = json.Marshal(value)
		changed = true
	}
	set("organization_id", t.OrganizationID)
	set("user_id", t.UserID)
	if !changed {
		return raw, nil
	}
	return json.Marshal(obj)
}

func present(v json.RawMessage) bool {
	s := string(bytes.TrimSpace(v))
	return s != "" && s != "null" && s != `""`
}

func (c *Client) fireRequest(info RequestInfo) {
	if c.cfg.Hooks.OnRequest == nil {
		return
	}
	safeHook("OnRequest", func() { c.cfg.Hooks.OnRequest(info) })
}

func (c *Client) fireResponse(info ResponseInfo) {
	if c.cfg.Hooks.OnResponse == nil {
		return
	}
	safeHook("OnResponse", func() { c.cfg.Hooks.OnResponse(info) })
}

func (c *Client) fireError(e *errx.Error) {
	if c.cfg.Hooks.OnError == nil {
		return
	}
	safeHook("OnError", func() { c.cfg.Hooks.OnError(e) })
}

func safeHook(name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			logx.Warnf("%s hook panicked: %v", name, r)
		}
	}()
	fn()
}
