package logging

import (
	"errors"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"
)

// ErrorKind buckets a Discord REST failure by how delivery should react.
type ErrorKind int

const (
	// ErrOK means no error.
	ErrOK ErrorKind = iota
	// ErrRateLimited carries a server-mandated wait; always retried and
	// never counted against the retry budget.
	ErrRateLimited
	// ErrTransient covers 5xx and timeout-equivalent failures; retried with
	// exponential backoff.
	ErrTransient
	// ErrGone means the destination no longer exists (404/410); webhooks
	// hit with this are blacklisted.
	ErrGone
	// ErrFatal covers non-retriable client errors (401/403 and anything
	// else unexpected).
	ErrFatal
)

func (k ErrorKind) String() string {
	switch k {
	case ErrOK:
		return "ok"
	case ErrRateLimited:
		return "rate_limited"
	case ErrTransient:
		return "transient"
	case ErrGone:
		return "gone"
	case ErrFatal:
		return "fatal"
	}
	return "unknown"
}

// Classify maps an error from a discordgo call to a retry decision. For
// rate limits the returned duration is the server-supplied retry-after.
func Classify(err error) (ErrorKind, time.Duration) {
	if err == nil {
		return ErrOK, 0
	}

	var rle *discordgo.RateLimitError
	if errors.As(err, &rle) {
		return ErrRateLimited, rle.RetryAfter
	}

	var rest *discordgo.RESTError
	if errors.As(err, &rest) {
		status := 0
		if rest.Response != nil {
			status = rest.Response.StatusCode
		}
		switch {
		case status == http.StatusTooManyRequests:
			// A 429 that discordgo did not surface as RateLimitError has no
			// usable retry-after; treat it as transient and back off.
			return ErrTransient, 0
		case status == http.StatusRequestTimeout:
			return ErrTransient, 0
		case status >= 500:
			return ErrTransient, 0
		case status == http.StatusNotFound || status == http.StatusGone:
			return ErrGone, 0
		default:
			return ErrFatal, 0
		}
	}

	// Network-level failures (dial errors, timeouts) look like timeouts to
	// the caller and are retried.
	return ErrTransient, 0
}
