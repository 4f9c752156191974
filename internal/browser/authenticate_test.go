package browser

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleister1102/fleetvoice/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSession struct {
	navigateErr   error
	fillErr       error
	enterNavigate bool
	clickNavigate bool
	clickErr      error
	html          string

	visited []string
	filled  map[string]string
	enters  int
	clicks  int
	closed  int
}

func newFakeSession() *fakeSession {
	return &fakeSession{filled: map[string]string{}}
}

func (f *fakeSession) Navigate(_ context.Context, url string) error {
	f.visited = append(f.visited, url)
	return f.navigateErr
}

func (f *fakeSession) Reload(context.Context) error { return nil }

func (f *fakeSession) Snapshot(context.Context) (string, error) { return f.html, nil }

func (f *fakeSession) Fill(_ context.Context, selector, value string) error {
	if f.fillErr != nil {
		return f.fillErr
	}
	f.filled[selector] = value
	return nil
}

func (f *fakeSession) SubmitWithEnter(context.Context, string, time.Duration) (bool, error) {
	f.enters++
	return f.enterNavigate, nil
}

func (f *fakeSession) ClickAndWait(context.Context, string, time.Duration) (bool, error) {
	f.clicks++
	return f.clickNavigate, f.clickErr
}

func (f *fakeSession) Close() error {
	f.closed++
	return nil
}

func testForm() config.LoginFormConfig {
	return config.LoginFormConfig{
		URL:              "https://dash.example.com/login",
		UsernameSelector: "#user",
		PasswordSelector: "#pass",
		SubmitSelector:   "#login",
	}
}

func newTestAuthenticator(form config.LoginFormConfig) *Authenticator {
	return NewAuthenticator(form, 10*time.Millisecond, 20*time.Millisecond, zerolog.Nop())
}

func TestAuthenticate_EnterNavigates(t *testing.T) {
	sess := newFakeSession()
	sess.enterNavigate = true

	err := newTestAuthenticator(testForm()).Authenticate(context.Background(), sess, Credentials{Username: "op", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, []string{"https://dash.example.com/login"}, sess.visited)
	assert.Equal(t, "op", sess.filled["#user"])
	assert.Equal(t, "pw", sess.filled["#pass"])
	assert.Equal(t, 1, sess.enters)
	assert.Equal(t, 0, sess.clicks, "button path must not run when Enter navigated")
}

func TestAuthenticate_FallsBackToButton(t *testing.T) {
	sess := newFakeSession()
	sess.clickNavigate = true

	err := newTestAuthenticator(testForm()).Authenticate(context.Background(), sess, Credentials{Username: "op", Password: "pw"})

	require.NoError(t, err)
	assert.Equal(t, 1, sess.enters)
	assert.Equal(t, 1, sess.clicks)
}

func TestAuthenticate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*fakeSession)
		reason string
	}{
		{
			name:   "login page unreachable",
			setup:  func(f *fakeSession) { f.navigateErr = errors.New("net::ERR_NAME_NOT_RESOLVED") },
			reason: "login page unreachable",
		},
		{
			name:   "missing username field",
			setup:  func(f *fakeSession) { f.fillErr = errors.New("element not found") },
			reason: "username field",
		},
		{
			name:   "neither path navigates",
			setup:  func(*fakeSession) {},
			reason: "no navigation after login submit",
		},
		{
			name:   "button click errors",
			setup:  func(f *fakeSession) { f.clickErr = errors.New("detached") },
			reason: "login button",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess := newFakeSession()
			tt.setup(sess)

			err := newTestAuthenticator(testForm()).Authenticate(context.Background(), sess, Credentials{})

			var authErr *AuthenticationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.reason, authErr.Reason)
		})
	}
}

func TestAuthenticate_SuccessSelector(t *testing.T) {
	form := testForm()
	form.SuccessSelector = "#dashboard"

	t.Run("present", func(t *testing.T) {
		sess := newFakeSession()
		sess.enterNavigate = true
		sess.html = `<html><body><div id="dashboard"></div></body></html>`

		assert.NoError(t, newTestAuthenticator(form).Authenticate(context.Background(), sess, Credentials{}))
	})

	t.Run("missing", func(t *testing.T) {
		sess := newFakeSession()
		sess.enterNavigate = true
		sess.html = `<html><body><form id="login-form"></form></body></html>`

		err := newTestAuthenticator(form).Authenticate(context.Background(), sess, Credentials{})

		var authErr *AuthenticationError
		require.ErrorAs(t, err, &authErr)
		assert.Contains(t, authErr.Error(), "#dashboard")
	})
}

func TestErrorsUnwrap(t *testing.T) {
	cause := errors.New("exec: chrome not found")

	launchErr := &LaunchError{Err: cause}
	assert.ErrorIs(t, launchErr, cause)
	assert.Contains(t, launchErr.Error(), "browser launch failed")

	authErr := &AuthenticationError{Reason: "login button", Err: cause}
	assert.ErrorIs(t, authErr, cause)
	assert.Equal(t, "authentication failed: login button: exec: chrome not found", authErr.Error())
}
