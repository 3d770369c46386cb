package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultVerifyURL = "https://www.google.com/recaptcha/api/siteverify"
	defaultTimeout   = 10 * time.Second
)

// Result is the outcome of a token verification.
type Result struct {
	Success    bool     `json:"success"`
	ErrorCodes []string `json:"error-codes,omitempty"`
}

// Verifier checks reCAPTCHA tokens against the siteverify endpoint.
type Verifier struct {
	verifyURL  string
	secret     string
	httpClient *http.Client
}

// option is a function that configures the Verifier.
type option func(*Verifier)

// NewVerifier creates a new captcha verifier from config. An empty secret
// means verification is disabled.
func NewVerifier(opts ...option) *Verifier {
	verifyURL := viper.GetString("captcha.verify_url")
	if verifyURL == "" {
		verifyURL = defaultVerifyURL
	}

	v := &Verifier{
		verifyURL:  verifyURL,
		secret:     viper.GetString("captcha.secret"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(v)
	}

	return v
}

// WithVerifyURL overrides the siteverify endpoint.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithVerifyURL(verifyURL string) option {
	return func(v *Verifier) {
		v.verifyURL = verifyURL
	}
}

// WithSecret overrides the shared secret.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithSecret(secret string) option {
	return func(v *Verifier) {
		v.secret = secret
	}
}

// Enabled reports whether a secret is configured.
func (v *Verifier) Enabled() bool {
	return v.secret != ""
}

// Verify checks the token. Network failures are returned as errors so the
// caller can decide whether to fail open.
func (v *Verifier) Verify(ctx context.Context, token string) (Result, error) {
	params := url.Values{}
	params.Set("secret", v.secret)
	params.Set("response", token)

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		v.verifyURL,
		strings.NewReader(params.Encode()),
	)
	if err != nil {
		return Result{}, fmt.Errorf("failed to build captcha request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("captcha request failed: %w", err)
	}
	defer resp.Body.Close()

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("failed to decode captcha response: %w", err)
	}

	return result, nil
}
