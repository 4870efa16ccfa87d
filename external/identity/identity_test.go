package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mymed-inc/mymed-api/external/identity"
)

func TestSignUp(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signUp", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "a@b.kz", body["email"])
		assert.Equal(t, "secret1", body["password"])
		assert.Equal(t, true, body["returnSecureToken"])

		_, _ = w.Write([]byte(`{"localId":"uid-1","email":"a@b.kz","idToken":"tok","refreshToken":"ref","expiresIn":"3600"}`))
	}))
	defer ts.Close()

	u, err := identity.New(ts.Client(), ts.URL, "test-key").SignUp(context.Background(), "a@b.kz", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, "uid-1", u.LocalID)
	assert.Equal(t, "a@b.kz", u.Email)
	assert.Equal(t, "tok", u.IDToken)
}

func TestSignInRejected(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:signInWithPassword", r.URL.Path)
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"INVALID_PASSWORD","errors":[]}}`))
	}))
	defer ts.Close()

	_, err := identity.New(ts.Client(), ts.URL, "k").SignIn(context.Background(), "a@b.kz", "wrong-one")

	var perr *identity.ProviderError
	if assert.True(t, errors.As(err, &perr)) {
		assert.Equal(t, "INVALID_PASSWORD", perr.Code)
		assert.Equal(t, http.StatusBadRequest, perr.StatusCode)
		assert.Equal(t, "The password is invalid or the user does not have a password.", err.Error())
	}
}

func TestProviderErrorDetail(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"WEAK_PASSWORD : Password should be at least 6 characters"}}`))
	}))
	defer ts.Close()

	_, err := identity.New(ts.Client(), ts.URL, "k").SignUp(context.Background(), "a@b.kz", "123")

	var perr *identity.ProviderError
	if assert.True(t, errors.As(err, &perr)) {
		assert.Equal(t, "WEAK_PASSWORD", perr.Code)
		assert.Equal(t, "The password must be 6 characters long or more.", perr.Message)
	}
}

func TestUnknownProviderError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"code":400,"message":"PROJECT_NOT_FOUND"}}`))
	}))
	defer ts.Close()

	_, err := identity.New(ts.Client(), ts.URL, "k").SignIn(context.Background(), "a@b.kz", "secret1")
	assert.Equal(t, "PROJECT_NOT_FOUND", err.Error())
}

func TestSendPasswordReset(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/accounts:sendOobCode", r.URL.Path)

		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "PASSWORD_RESET", body["requestType"])
		assert.Equal(t, "a@b.kz", body["email"])

		_, _ = w.Write([]byte(`{"email":"a@b.kz"}`))
	}))
	defer ts.Close()

	err := identity.New(ts.Client(), ts.URL, "k").SendPasswordReset(context.Background(), "a@b.kz")
	assert.NoError(t, err)
}

func TestNetworkFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {}))
	u := ts.URL
	ts.Close()

	err := identity.New(nil, u, "k").SendPasswordReset(context.Background(), "a@b.kz")

	var perr *identity.ProviderError
	if assert.True(t, errors.As(err, &perr)) {
		assert.Equal(t, "NETWORK_ERROR", perr.Code)
		assert.NotNil(t, errors.Unwrap(err))
	}
}

func TestEmptyAPIKey(t *testing.T) {
	_, err := identity.New(nil, "", "").SignIn(context.Background(), "a@b.kz", "secret1")
	assert.EqualError(t, err, "empty api key")
}
