package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/connectro/backend/internal/logging"
)

const recaptchaEndpoint = "https://www.google.com/recaptcha/api/siteverify"

// ErrCaptchaUnavailable means the captcha provider could not give an answer.
var ErrCaptchaUnavailable = errors.New("captcha verification unavailable")

// CaptchaVerifier checks a client-supplied captcha token. A rejected token is
// (false, reason, nil); an error means no verdict was reached.
type CaptchaVerifier interface {
	Verify(ctx context.Context, token string, remoteIP string) (bool, string, error)
}

// RecaptchaVerifier checks reCAPTCHA v2 tokens with Google's siteverify API.
type RecaptchaVerifier struct {
	secret   string
	endpoint string
	client   *http.Client
	log      logging.Logger
}

type siteverifyResult struct {
	Success    bool     `json:"success"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

func NewRecaptchaVerifier(secret string, log logging.Logger) *RecaptchaVerifier {
	if log == nil {
		log = logging.Discard()
	}
	return &RecaptchaVerifier{
		secret:   strings.TrimSpace(secret),
		endpoint: recaptchaEndpoint,
		client:   &http.Client{Timeout: 8 * time.Second},
		log:      log,
	}
}

func (v *RecaptchaVerifier) Verify(ctx context.Context, token string, remoteIP string) (bool, string, error) {
	switch {
	case v.secret == "":
		return false, "missing_secret", nil
	case strings.TrimSpace(token) == "":
		return false, "missing_token", nil
	}

	res, err := v.siteverify(ctx, strings.TrimSpace(token), strings.TrimSpace(remoteIP))
	if err != nil {
		return false, "", fmt.Errorf("%w: %w", ErrCaptchaUnavailable, err)
	}
	if res.Success {
		return true, "", nil
	}

	reason := "verification_failed"
	if len(res.ErrorCodes) > 0 {
		reason = strings.Join(res.ErrorCodes, ",")
	}
	v.log.Warn(ctx, "captcha rejected", "reason", reason, "hostname", res.Hostname)
	return false, reason, nil
}

func (v *RecaptchaVerifier) siteverify(ctx context.Context, token, remoteIP string) (*siteverifyResult, error) {
	form := url.Values{"secret": {v.secret}, "response": {token}}
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("siteverify: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("siteverify: status %d", resp.StatusCode)
	}

	var res siteverifyResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, fmt.Errorf("siteverify: decode: %w", err)
	}
	return &res, nil
}
