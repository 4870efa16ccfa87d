package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const (
	logPrefix       = "identity"
	defaultEndpoint = "https://identitytoolkit.googleapis.com/v1"
	defaultTimeout  = 15 * time.Second

	requestPasswordReset = "PASSWORD_RESET"
	codeNetworkError     = "NETWORK_ERROR"
)

var errEmptyAPIKey = fmt.Errorf("empty api key")

var messages = map[string]string{
	"EMAIL_EXISTS":                "The email address is already in use by another account.",
	"EMAIL_NOT_FOUND":             "There is no user record corresponding to this identifier. The user may have been deleted.",
	"INVALID_PASSWORD":            "The password is invalid or the user does not have a password.",
	"INVALID_LOGIN_CREDENTIALS":   "The supplied auth credential is incorrect, malformed or has expired.",
	"INVALID_EMAIL":               "The email address is badly formatted.",
	"WEAK_PASSWORD":               "The password must be 6 characters long or more.",
	"USER_DISABLED":               "The user account has been disabled by an administrator.",
	"OPERATION_NOT_ALLOWED":       "The given sign-in provider is disabled for this project.",
	"TOO_MANY_ATTEMPTS_TRY_LATER": "We have blocked all requests from this device due to unusual activity. Try again later.",
	codeNetworkError:              "A network error (such as timeout, interrupted connection or unreachable host) has occurred.",
}

// ProviderError is a failure reported by the identity provider. Error
// returns a message fit for display.
type ProviderError struct {
	StatusCode int
	Code       string
	Message    string
	Err        error
}

func (e *ProviderError) Error() string {
	return e.Message
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func newProviderError(status int, raw string) *ProviderError {
	// messages may carry a detail, e.g. "WEAK_PASSWORD : Password should be at least 6 characters"
	code := strings.TrimSpace(strings.SplitN(raw, ":", 2)[0])

	msg, ok := messages[code]
	if !ok {
		msg = raw
	}
	if msg == "" {
		msg = http.StatusText(status)
	}

	return &ProviderError{
		StatusCode: status,
		Code:       code,
		Message:    msg,
	}
}

// User is an authenticated account at the provider
type User struct {
	LocalID      string `json:"localId"`
	Email        string `json:"email"`
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    string `json:"expiresIn"`
}

// Provider - email and password identity operations
type Provider interface {
	SignUp(ctx context.Context, email, password string) (*User, error)
	SignIn(ctx context.Context, email, password string) (*User, error)
	SendPasswordReset(ctx context.Context, email string) error
}

type identity struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

type credentialRequest struct {
	Email             string `json:"email"`
	Password          string `json:"password"`
	ReturnSecureToken bool   `json:"returnSecureToken"`
}

type oobRequest struct {
	RequestType string `json:"requestType"`
	Email       string `json:"email"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (i identity) SignUp(ctx context.Context, email, password string) (*User, error) {
	var u User
	if err := i.call(ctx, "accounts:signUp", credentialRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &u); nil != err {
		return nil, err
	}

	return &u, nil
}

func (i identity) SignIn(ctx context.Context, email, password string) (*User, error) {
	var u User
	if err := i.call(ctx, "accounts:signInWithPassword", credentialRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}, &u); nil != err {
		return nil, err
	}

	return &u, nil
}

func (i identity) SendPasswordReset(ctx context.Context, email string) error {
	return i.call(ctx, "accounts:sendOobCode", oobRequest{
		RequestType: requestPasswordReset,
		Email:       email,
	}, nil)
}

func (i identity) call(ctx context.Context, method string, body interface{}, result interface{}) error {
	logger := log.WithFields(log.Fields{
		"prefix": logPrefix,
		"method": method,
	})

	if i.apiKey == "" {
		return errEmptyAPIKey
	}

	b, err := json.Marshal(body)
	if nil != err {
		return err
	}

	u := fmt.Sprintf("%s/%s?key=%s", i.endpoint, method, url.QueryEscape(i.apiKey))
	req, err := http.NewRequest(http.MethodPost, u, bytes.NewReader(b))
	if nil != err {
		return err
	}
	req = req.WithContext(ctx)
	req.Header.Set("Content-Type", "application/json")

	resp, err := i.client.Do(req)
	if nil != err {
		logger.WithError(err).Error("identity request")
		return &ProviderError{
			Code:    codeNetworkError,
			Message: messages[codeNetworkError],
			Err:     err,
		}
	}
	defer resp.Body.Close()

	d, err := ioutil.ReadAll(resp.Body)
	if nil != err {
		return &ProviderError{
			StatusCode: resp.StatusCode,
			Code:       codeNetworkError,
			Message:    messages[codeNetworkError],
			Err:        err,
		}
	}

	if resp.StatusCode != http.StatusOK {
		var e errorResponse
		_ = json.Unmarshal(d, &e)

		perr := newProviderError(resp.StatusCode, e.Error.Message)
		logger.WithFields(log.Fields{
			"status": resp.StatusCode,
			"code":   perr.Code,
		}).Warn("identity provider rejected request")

		return perr
	}

	if result == nil {
		return nil
	}

	return json.Unmarshal(d, result)
}

// New returns a Provider calling endpoint, or the public identity toolkit
// when endpoint is empty
func New(client *http.Client, endpoint, apiKey string) Provider {
	u := defaultEndpoint
	if endpoint != "" {
		u = strings.TrimRight(endpoint, "/")
	}

	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}

	return &identity{
		client:   client,
		endpoint: u,
		apiKey:   apiKey,
	}
}
