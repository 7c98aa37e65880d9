package recaptcha

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/fastygo/droptracker/internal/config"
)

type verifyResponse struct {
	Success    bool     `json:"success"`
	Score      *float64 `json:"score"`
	Action     string   `json:"action"`
	Hostname   string   `json:"hostname"`
	ErrorCodes []string `json:"error-codes"`
}

// Client verifies captcha tokens against a siteverify endpoint.
type Client struct {
	http      *fasthttp.Client
	secret    string
	verifyURL string
	minScore  float64
	timeout   time.Duration
	logger    *zap.Logger
}

func NewClient(cfg config.RecaptchaConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	return &Client{
		http: &fasthttp.Client{
			Name:         "droptracker-recaptcha",
			ReadTimeout:  cfg.Timeout,
			WriteTimeout: cfg.Timeout,
		},
		secret:    cfg.Secret,
		verifyURL: cfg.VerifyURL,
		minScore:  cfg.MinScore,
		timeout:   cfg.Timeout,
		logger:    logger,
	}
}

// Enabled reports whether a secret is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.secret != ""
}

func (c *Client) Verify(ctx context.Context, token, remoteIP string) (bool, error) {
	if token == "" {
		return false, nil
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.verifyURL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/x-www-form-urlencoded")
	args := req.PostArgs()
	args.Set("secret", c.secret)
	args.Set("response", token)
	if remoteIP != "" {
		args.Set("remoteip", remoteIP)
	}

	timeout := c.timeout
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}
	if err := c.http.DoTimeout(req, resp, timeout); err != nil {
		return false, err
	}
	if resp.StatusCode() != fasthttp.StatusOK {
		return false, fmt.Errorf("siteverify returned status %d", resp.StatusCode())
	}

	var result verifyResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return false, err
	}
	if !result.Success {
		c.logger.Debug("captcha rejected", zap.Strings("error_codes", result.ErrorCodes))
		return false, nil
	}
	// Score-less (v2) responses pass on success alone.
	if result.Score != nil && *result.Score < c.minScore {
		c.logger.Debug("captcha score too low", zap.Float64("score", *result.Score))
		return false, nil
	}
	return true, nil
}
