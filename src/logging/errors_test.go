package logging

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

func restErr(status int) error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: status, Status: http.StatusText(status)},
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorKind
	}{
		{"nil", nil, ErrOK},
		{"500", restErr(500), ErrTransient},
		{"502", restErr(502), ErrTransient},
		{"408", restErr(408), ErrTransient},
		{"429 without retry-after", restErr(429), ErrTransient},
		{"404", restErr(404), ErrGone},
		{"410", restErr(410), ErrGone},
		{"401", restErr(401), ErrFatal},
		{"403", restErr(403), ErrFatal},
		{"400", restErr(400), ErrFatal},
		{"network failure", errors.New("dial tcp: connection refused"), ErrTransient},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			kind, _ := Classify(tc.err)
			assert.Equal(t, tc.want, kind)
		})
	}
}

func TestClassifyRateLimitCarriesRetryAfter(t *testing.T) {
	err := &discordgo.RateLimitError{
		RateLimit: &discordgo.RateLimit{
			TooManyRequests: &discordgo.TooManyRequests{RetryAfter: 3 * time.Second},
			URL:             "https://discord.com/api/webhooks/1/t",
		},
	}

	kind, wait := Classify(err)
	assert.Equal(t, ErrRateLimited, kind)
	assert.Equal(t, 3*time.Second, wait)
}

func TestErrorKindStrings(t *testing.T) {
	assert.Equal(t, "ok", ErrOK.String())
	assert.Equal(t, "rate_limited", ErrRateLimited.String())
	assert.Equal(t, "transient", ErrTransient.String())
	assert.Equal(t, "gone", ErrGone.String())
	assert.Equal(t, "fatal", ErrFatal.String())
}
