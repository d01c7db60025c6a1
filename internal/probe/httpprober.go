package probe

import (
	"context"
	"errors"
	"io"
	"net"
	"net/http"
	"time"
)

const defaultTimeout = 30 * time.Second

// HTTPProber issues one GET per probe. The timeout comes in per call, so the
// client itself carries none; pooling keeps repeated checks cheap.
type HTTPProber struct {
	Client *http.Client
}

func NewHTTPProber() *HTTPProber {
	return &HTTPProber{
		Client: &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        32,
				MaxIdleConnsPerHost: 2,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func (h *HTTPProber) Probe(ctx context.Context, target string, timeout time.Duration) Outcome {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	req, err := http.NewRequestWithContext(cctx, http.MethodGet, target, nil)
	if err != nil {
		return Outcome{Class: ClassNetworkError, Reason: err.Error()}
	}

	resp, err := h.Client.Do(req)
	latency := time.Since(start).Seconds() * 1000 // ms
	if err != nil {
		return Outcome{Class: classifyErr(err), LatencyMS: latency, Reason: err.Error()}
	}
	defer resp.Body.Close()

	// drain a little so the connection can be reused
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))

	out := Outcome{StatusCode: resp.StatusCode, LatencyMS: latency, Reason: resp.Status}
	if resp.StatusCode >= 200 && resp.StatusCode <= 299 {
		out.Class = ClassSuccess
	} else {
		out.Class = ClassHTTPError
	}
	return out
}

// classifyErr separates deadline expiry from other transport failures. The
// deadline owns the boundary: a response that has not fully arrived when the
// deadline fires is a timeout.
func classifyErr(err error) Class {
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return ClassTimeout
	}
	return ClassNetworkError
}
