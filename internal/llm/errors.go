// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package llm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// QuotaError indicates the provider refused the call for capacity or quota
// reasons. The tier policy treats it as the only signal to fall back.
type QuotaError struct {
	Model      string
	StatusCode int
	RetryAfter time.Duration
	Err        error
}

func (e *QuotaError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s quota exceeded (retry after %s): %v", e.Model, e.RetryAfter, e.Err)
	}
	return fmt.Sprintf("%s quota exceeded: %v", e.Model, e.Err)
}

func (e *QuotaError) Unwrap() error { return e.Err }

// IsQuota reports whether err is or wraps a *QuotaError.
func IsQuota(err error) bool {
	var qe *QuotaError
	return errors.As(err, &qe)
}

// quotaMarkers are provider error codes that signal a capacity limit even
// when the HTTP status does not.
var quotaMarkers = []string{
	"insufficient_quota",
	"rate_limit_error",
	"overloaded_error",
	"RESOURCE_EXHAUSTED",
}

func hasQuotaMarker(s string) bool {
	for _, m := range quotaMarkers {
		if strings.Contains(s, m) {
			return true
		}
	}
	return false
}

// parseRetryAfter parses a Retry-After header in seconds. It returns 0 for
// empty or non-integer values.
func parseRetryAfter(val string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(val))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
