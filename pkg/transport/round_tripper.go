package transport

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gofrs/uuid/v5"

	"github.com/storepay/gateway/pkg/logger"
)

// RequestIDRoundTripper stamps every outbound request with an X-Request-ID
// header (taken from the context, or freshly generated) and logs the call.
type RequestIDRoundTripper struct {
	Transport http.RoundTripper
}

func NewRequestIDRoundTripper(transport http.RoundTripper) *RequestIDRoundTripper {
	return &RequestIDRoundTripper{Transport: transport}
}

func (t *RequestIDRoundTripper) RoundTrip(r *http.Request) (*http.Response, error) {
	ctx := r.Context()

	reqID := logger.RequestIDFromCtx(ctx)
	if reqID == "" {
		reqID = uuid.Must(uuid.NewV4()).String()
	}

	r.Header.Set("X-Request-ID", reqID)

	slog.InfoContext(ctx, "outgoing request", "request", fmt.Sprintf("%s %s", r.Method, r.URL.Redacted()))

	resp, err := t.Transport.RoundTrip(r)
	if err != nil {
		return nil, fmt.Errorf("round trip: %w", err)
	}

	slog.InfoContext(ctx, "incoming response", "response", fmt.Sprintf("%s %s %d", r.Method, r.URL.Redacted(), resp.StatusCode))

	return resp, nil
}
