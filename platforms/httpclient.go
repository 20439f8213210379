package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"social-analytics/models"
	"social-analytics/utils"
)

// leveledLogger adapts utils.Logger to retryablehttp's key/value logger.
// Client errors are logged at warn because they are retried.
type leveledLogger struct {
	inner *utils.Logger
}

func (l leveledLogger) Error(msg string, keysAndValues ...any) {
	l.inner.Warn("[http] %s %s", msg, formatKV(keysAndValues))
}

func (l leveledLogger) Warn(msg string, keysAndValues ...any) {
	l.inner.Warn("[http] %s %s", msg, formatKV(keysAndValues))
}

func (l leveledLogger) Info(msg string, keysAndValues ...any) {
	l.inner.Debug("[http] %s %s", msg, formatKV(keysAndValues))
}

func (l leveledLogger) Debug(msg string, keysAndValues ...any) {
	l.inner.Debug("[http] %s %s", msg, formatKV(keysAndValues))
}

func formatKV(kv []any) string {
	var b strings.Builder
	for i := 0; i+1 < len(kv); i += 2 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "%v=%v", kv[i], kv[i+1])
	}
	return b.String()
}

// NewHTTPClient returns a standard *http.Client that retries connection
// errors and 5xx responses. 429 responses are not retried.
func NewHTTPClient(maxRetries int, timeout time.Duration, logger *utils.Logger) *http.Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = maxRetries
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 5 * time.Second
	retryClient.Logger = retryablehttp.LeveledLogger(leveledLogger{inner: logger})
	retryClient.CheckRetry = retryPolicy

	client := retryClient.StandardClient()
	client.Timeout = timeout
	return client
}

func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if err == nil && resp.StatusCode == http.StatusTooManyRequests {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// apiRequest performs a bearer-authenticated call and decodes a JSON
// response into out. Non-2xx statuses become ErrExternalService.
func apiRequest(ctx context.Context, client *http.Client, method, url, token string, body io.Reader, contentType string, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", models.ErrExternalService, method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("%w: read response: %v", models.ErrExternalService, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: %s %s returned %d: %s",
			models.ErrExternalService, method, req.URL.Path, resp.StatusCode, snippet(payload))
	}

	if out == nil || len(payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return fmt.Errorf("%w: decode %s: %v", models.ErrExternalService, req.URL.Path, err)
	}
	return nil
}

func jsonBody(v any) (io.Reader, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(b), nil
}

func snippet(b []byte) string {
	const max = 200
	s := strings.TrimSpace(string(b))
	if len(s) > max {
		return s[:max] + "..."
	}
	return s
}
