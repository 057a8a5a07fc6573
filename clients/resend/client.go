package resend

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pkg/errors"
	resendsdk "github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// Client defines the interface for sending transactional email through Resend
type Client interface {
	Send(ctx context.Context, email Email) (string, error)
}

type Email struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// APIError is a request the Resend API answered with an error.
type APIError struct {
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return "resend API error: " + e.Message
}

type options struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*options)

func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

type clientImpl struct {
	apiKey  string
	sdk     *resendsdk.Client
	limiter *rate.Limiter
}

// NewClient creates a Resend client. Sends are paced to the API's default of
// two requests per second.
func NewClient(apiKey string, opts ...Option) Client {
	o := options{httpClient: &http.Client{Timeout: 15 * time.Second}}
	for _, opt := range opts {
		opt(&o)
	}

	sdk := resendsdk.NewCustomClient(o.httpClient, apiKey)
	if o.baseURL != "" {
		// the SDK resolves "emails" against the base, so it needs the trailing slash
		base, err := url.Parse(strings.TrimRight(o.baseURL, "/") + "/")
		if err != nil {
			log.Warn().Err(err).Str("url", o.baseURL).Msg("Ignoring invalid Resend base URL")
		} else {
			sdk.BaseURL = base
		}
	}

	return &clientImpl{
		apiKey:  apiKey,
		sdk:     sdk,
		limiter: rate.NewLimiter(rate.Limit(2), 2),
	}
}

func (c *clientImpl) Send(ctx context.Context, email Email) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("RESEND_API_KEY is not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "waiting for send slot")
	}

	sent, err := c.sdk.Emails.SendWithContext(ctx, &resendsdk.SendEmailRequest{
		From:    email.From,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		var urlErr *url.Error
		if errors.As(err, &urlErr) || ctx.Err() != nil {
			return "", errors.Wrap(err, "error sending email")
		}
		return "", &APIError{Message: strings.TrimPrefix(err.Error(), "[ERROR]: ")}
	}
	return sent.Id, nil
}
