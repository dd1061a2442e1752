package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"

	"github.com/robbertpopa/itec-web-2025/internal/app_errors"
	"github.com/robbertpopa/itec-web-2025/internal/models"
	"github.com/robbertpopa/itec-web-2025/pkg/logger"
)

const (
	identityToolkitURL = "https://identitytoolkit.googleapis.com/v1"
	secureTokenURL     = "https://securetoken.googleapis.com/v1"
)

// FirebaseAuth verifies Firebase ID tokens with the Admin SDK. Password
// sign-in and token refresh go through the public REST API and need the
// project's web API key.
type FirebaseAuth struct {
	log         logger.Log
	client      *auth.Client
	apiKey      string
	httpClient  *http.Client
	identityURL string
	tokenURL    string
}

func NewFirebaseAuth(l logger.Log, client *auth.Client, apiKey string) *FirebaseAuth {
	return &FirebaseAuth{
		log:         l,
		client:      client,
		apiKey:      apiKey,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		identityURL: identityToolkitURL,
		tokenURL:    secureTokenURL,
	}
}

func (f *FirebaseAuth) Verify(ctx context.Context, token string) (models.Identity, error) {
	decoded, err := f.client.VerifyIDToken(ctx, token)
	if err != nil {
		return models.Identity{}, fmt.Errorf("%w: %v", app_errors.ErrInvalidToken, err)
	}
	id := models.Identity{UID: decoded.UID}
	if email, ok := decoded.Claims["email"].(string); ok {
		id.Email = email
	}
	return id, nil
}

func (f *FirebaseAuth) Register(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if err := ValidateCredentials(email, password); err != nil {
		return "", err
	}
	params := (&auth.UserToCreate{}).Email(email).Password(password)
	user, err := f.client.CreateUser(ctx, params)
	if err != nil {
		if auth.IsEmailAlreadyExists(err) {
			return "", app_errors.ErrUserExists
		}
		return "", fmt.Errorf("FirebaseAuth.Register: %w", err)
	}
	f.log.Info("Register: firebase user created", "uid", user.UID)
	return user.UID, nil
}

type signInResponse struct {
	IDToken      string `json:"idToken"`
	RefreshToken string `json:"refreshToken"`
	LocalID      string `json:"localId"`
}

type refreshResponse struct {
	IDToken      string `json:"id_token"`
	RefreshToken string `json:"refresh_token"`
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (f *FirebaseAuth) Login(ctx context.Context, email, password string) (*models.TokenPair, error) {
	if f.apiKey == "" {
		return nil, app_errors.ErrNotSupported
	}
	body, err := json.Marshal(map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	})
	if err != nil {
		return nil, err
	}
	endpoint := f.identityURL + "/accounts:signInWithPassword?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var out signInResponse
	if err := f.do(req, &out); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: out.IDToken, RefreshToken: out.RefreshToken}, nil
}

func (f *FirebaseAuth) Refresh(ctx context.Context, refreshToken string) (*models.TokenPair, error) {
	if f.apiKey == "" {
		return nil, app_errors.ErrNotSupported
	}
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	endpoint := f.tokenURL + "/token?key=" + url.QueryEscape(f.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var out refreshResponse
	if err := f.do(req, &out); err != nil {
		return nil, err
	}
	return &models.TokenPair{AccessToken: out.IDToken, RefreshToken: out.RefreshToken}, nil
}

func (f *FirebaseAuth) do(req *http.Request, v interface{}) error {
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("FirebaseAuth: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var re restError
		_ = json.NewDecoder(resp.Body).Decode(&re)
		return mapRESTError(re.Error.Message, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("FirebaseAuth: decode response: %w", err)
	}
	return nil
}

// mapRESTError translates Identity Toolkit error codes. Messages may carry a
// suffix such as "TOO_MANY_ATTEMPTS_TRY_LATER : ...".
func mapRESTError(message string, status int) error {
	code := strings.TrimSpace(strings.SplitN(message, ":", 2)[0])
	switch code {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "INVALID_EMAIL", "MISSING_PASSWORD":
		return app_errors.ErrIncorrectPassword
	case "TOKEN_EXPIRED", "INVALID_REFRESH_TOKEN", "USER_NOT_FOUND", "USER_DISABLED", "MISSING_REFRESH_TOKEN":
		return app_errors.ErrInvalidToken
	}
	return fmt.Errorf("FirebaseAuth: status %d: %s", status, message)
}
