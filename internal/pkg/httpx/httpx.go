// Package httpx holds the outbound HTTP plumbing shared by the resort API
// and mail API clients.
package httpx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
	"time"
)

const DefaultTimeout = 10 * time.Second

// maxErrorBody caps how much of an upstream error body is kept in errors.
const maxErrorBody = 1024

var (
	ErrTimeout = errors.New("timeout")
	ErrNetwork = errors.New("network error")
)

// StatusError is returned when the upstream answered with a non-2xx status.
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s http error: status=%d body=%s", e.Service, e.StatusCode, e.Body)
}

// NewClient builds an *http.Client with pooled keep-alive connections.
func NewClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

// CheckStatus returns nil for 2xx responses and a *StatusError otherwise.
func CheckStatus(service string, resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: fmt.Sprintf("<failed to read body: %v>", err)}
	}
	return &StatusError{Service: service, StatusCode: resp.StatusCode, Body: string(body)}
}

// ClassifyRequestError wraps a transport error as timeout, network or request error.
func ClassifyRequestError(ctx context.Context, service string, err error) error {
	if isTimeoutError(ctx, err) {
		return fmt.Errorf("%s %w: %v", service, ErrTimeout, err)
	}
	if isNetworkError(err) {
		return fmt.Errorf("%s %w: %v", service, ErrNetwork, err)
	}
	return fmt.Errorf("%s request error: %w", service, err)
}

func isTimeoutError(ctx context.Context, err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return false
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		err = urlErr.Err
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return true
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return true
	}

	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ENETUNREACH) ||
		errors.Is(err, syscall.EHOSTUNREACH) {
		return true
	}

	return false
}
