// Package delivery emails an assembled document through the remote
// email-sending function.
package delivery

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"planning-bee/internal/config"
	"planning-bee/internal/validate"
)

var (
	ErrInvalidRecipient = errors.New("invalid recipient email address")
	ErrEmptyDocument    = errors.New("document is empty")
	ErrDisabled         = errors.New("email delivery is not configured")
	ErrRejected         = errors.New("email was not sent")
)

const defaultTimeout = 30 * time.Second

// Result is what the email function reports.
type Result struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type attachment struct {
	Filename string `json:"filename"`
	Content  string `json:"content"`
}

type payload struct {
	To          string       `json:"to"`
	Subject     string       `json:"subject"`
	Message     string       `json:"message"`
	Attachments []attachment `json:"attachments"`
}

type Client struct {
	http    *fasthttp.Client
	cfg     config.Delivery
	timeout time.Duration
	logger  *zap.Logger
}

// New returns a delivery client for cfg. A nil http client gets a default
// one.
func New(cfg config.Delivery, httpClient *fasthttp.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &fasthttp.Client{
			Name:         "planning-bee",
			ReadTimeout:  defaultTimeout,
			WriteTimeout: defaultTimeout,
		}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	def := config.Default().Delivery
	if cfg.Subject == "" {
		cfg.Subject = def.Subject
	}
	if cfg.Message == "" {
		cfg.Message = def.Message
	}
	if cfg.Filename == "" {
		cfg.Filename = def.Filename
	}
	return &Client{http: httpClient, cfg: cfg, timeout: defaultTimeout, logger: logger}
}

// Send posts pdf to the email function once. A failure reported by the
// function comes back as a Result with Success false together with an
// error wrapping ErrRejected. Nothing is retried.
func (c *Client) Send(ctx context.Context, pdf []byte, to string) (Result, error) {
	to = strings.TrimSpace(to)
	if !validate.Email(to) {
		return Result{Error: ErrInvalidRecipient.Error()}, ErrInvalidRecipient
	}
	if len(pdf) == 0 {
		return Result{Error: ErrEmptyDocument.Error()}, ErrEmptyDocument
	}
	if c.cfg.URL == "" {
		return Result{Error: ErrDisabled.Error()}, ErrDisabled
	}
	if err := ctx.Err(); err != nil {
		return Result{Error: err.Error()}, err
	}

	body, err := json.Marshal(payload{
		To:      to,
		Subject: c.cfg.Subject,
		Message: c.cfg.Message,
		Attachments: []attachment{{
			Filename: c.cfg.Filename,
			Content:  base64.StdEncoding.EncodeToString(pdf),
		}},
	})
	if err != nil {
		return Result{Error: err.Error()}, fmt.Errorf("encoding email: %w", err)
	}

	deadline := time.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.cfg.URL)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(body)

	start := time.Now()
	if err := c.http.DoDeadline(req, resp, deadline); err != nil {
		c.logger.Warn("email delivery failed", zap.String("to", to), zap.Error(err))
		return Result{Error: err.Error()}, fmt.Errorf("sending email: %w", err)
	}

	var res Result
	if err := json.Unmarshal(resp.Body(), &res); err != nil {
		res = Result{}
		if code := resp.StatusCode(); code < 200 || code >= 300 {
			res.Error = fmt.Sprintf("email service returned status %d", code)
		} else {
			res.Error = "email service returned an unreadable response"
		}
	}
	if code := resp.StatusCode(); res.Success && (code < 200 || code >= 300) {
		res = Result{Error: fmt.Sprintf("email service returned status %d", code)}
	}
	if !res.Success {
		if res.Error == "" {
			res.Error = "email service reported a failure"
		}
		c.logger.Warn("email rejected",
			zap.String("to", to),
			zap.Int("status", resp.StatusCode()),
			zap.String("error", res.Error))
		return res, fmt.Errorf("%w: %s", ErrRejected, res.Error)
	}

	c.logger.Info("email sent",
		zap.String("to", to),
		zap.Int("bytes", len(pdf)),
		zap.Duration("took", time.Since(start)))
	return res, nil
}
