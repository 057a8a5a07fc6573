package validators

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/9ssi7/turnstile"
)

var (
	ErrTokenRequired = invalid("turnstile_token", "token is required")
	ErrTokenInvalid  = invalid("turnstile_token", "token not valid")
)

// tokenVerifier is the siteverify call, satisfied by turnstile.Service.
type tokenVerifier interface {
	Verify(ctx context.Context, token string, ip string) (bool, error)
}

// TurnstileVerifier checks Cloudflare Turnstile tokens. A verifier without a
// secret accepts everything, so captcha stays optional per deployment.
type TurnstileVerifier struct {
	Secret    string
	TestToken string
	Release   bool

	srv tokenVerifier
}

func NewTurnstileVerifier(secret, testToken string, release bool) *TurnstileVerifier {
	return &TurnstileVerifier{
		Secret:    secret,
		TestToken: testToken,
		Release:   release,
		srv: turnstile.New(turnstile.Config{
			Secret: secret,
		}),
	}
}

func (v *TurnstileVerifier) Enabled() bool {
	return v != nil && v.Secret != ""
}

func (v *TurnstileVerifier) ValidateTurnstileToken(ctx context.Context, token, ip string) error {
	if !v.Enabled() {
		return nil
	}
	if token == "" {
		log.Debug().Msg("Turnstile token missing")
		return ErrTokenRequired
	}
	if !v.Release && v.TestToken != "" && token == v.TestToken {
		log.Debug().Msg("Turnstile test token used")
		return nil
	}

	ok, err := v.srv.Verify(ctx, token, ip)
	if err != nil {
		log.Error().Err(err).Msg("Turnstile verification error")
		return errors.Wrap(err, "turnstile verification")
	}
	if !ok {
		log.Info().Msg("Turnstile token rejected")
		return ErrTokenInvalid
	}
	return nil
}
