package browser

import (
	"context"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/rs/zerolog"
)

// Authenticator performs the dashboard login flow on a session.
type Authenticator struct {
	form            config.LoginFormConfig
	confirmTimeout  time.Duration
	fallbackTimeout time.Duration
	logger          zerolog.Logger
}

func NewAuthenticator(form config.LoginFormConfig, confirmTimeout, fallbackTimeout time.Duration, logger zerolog.Logger) *Authenticator {
	return &Authenticator{
		form:            form,
		confirmTimeout:  confirmTimeout,
		fallbackTimeout: fallbackTimeout,
		logger:          logger.With().Str("component", "Authenticator").Logger(),
	}
}

// Authenticate submits creds with Enter and, if no navigation follows within
// the confirm timeout, clicks the submit button and waits for the fallback
// timeout. Every failure is an *AuthenticationError.
func (a *Authenticator) Authenticate(ctx context.Context, sess Session, creds Credentials) error {
	if err := sess.Navigate(ctx, a.form.URL); err != nil {
		return &AuthenticationError{Reason: "login page unreachable", Err: err}
	}
	if err := sess.Fill(ctx, a.form.UsernameSelector, creds.Username); err != nil {
		return &AuthenticationError{Reason: "username field", Err: err}
	}
	if err := sess.Fill(ctx, a.form.PasswordSelector, creds.Password); err != nil {
		return &AuthenticationError{Reason: "password field", Err: err}
	}

	navigated, err := sess.SubmitWithEnter(ctx, a.form.PasswordSelector, a.confirmTimeout)
	if err != nil {
		return &AuthenticationError{Reason: "submit with enter", Err: err}
	}

	if !navigated {
		a.logger.Info().Dur("waited", a.confirmTimeout).Msg("No navigation after Enter, using login button")
		navigated, err = sess.ClickAndWait(ctx, a.form.SubmitSelector, a.fallbackTimeout)
		if err != nil {
			return &AuthenticationError{Reason: "login button", Err: err}
		}
		if !navigated {
			return &AuthenticationError{Reason: "no navigation after login submit"}
		}
	}

	if a.form.SuccessSelector != "" {
		html, err := sess.Snapshot(ctx)
		if err != nil {
			return &AuthenticationError{Reason: "post-login snapshot", Err: err}
		}
		ok, err := containsSelector(html, a.form.SuccessSelector)
		if err != nil {
			return &AuthenticationError{Reason: "post-login snapshot", Err: err}
		}
		if !ok {
			return &AuthenticationError{Reason: "success marker " + a.form.SuccessSelector + " not present"}
		}
	}

	a.logger.Debug().Msg("Authenticated")
	return nil
}

func containsSelector(html, selector string) (bool, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return false, err
	}
	return doc.Find(selector).Length() > 0, nil
}
