package sms

import (
	"context"
	"errors"
	"fmt"
)

// Provider sends text messages through an external gateway.
type Provider interface {
	SendSMS(ctx context.Context, request *SMSRequest) (*SMSResponse, error)
	Name() string
}

type SMSRequest struct {
	To      string `json:"to"`
	From    string `json:"from"`
	Message string `json:"message"`
	Type    string `json:"type"` // transactional, promotional
}

type SMSResponse struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
	Error     string `json:"error,omitempty"`
}

type Config struct {
	Provider         string
	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
	AWSRegion        string
}

// NewProvider returns nil, nil when SMS is disabled.
func NewProvider(ctx context.Context, cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, nil
	case "twilio":
		if cfg.TwilioAccountSID == "" || cfg.TwilioAuthToken == "" {
			return nil, errors.New("twilio requires account sid and auth token")
		}
		return NewTwilioProvider(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.TwilioFromNumber), nil
	case "sns":
		return NewAWSSNSProvider(ctx, cfg.AWSRegion)
	default:
		return nil, fmt.Errorf("unknown sms provider %q", cfg.Provider)
	}
}

// SendBulk sends every request and collects per-recipient results. It
// keeps going after failures and returns the first error seen.
func SendBulk(ctx context.Context, provider Provider, requests []*SMSRequest) ([]*SMSResponse, error) {
	responses := make([]*SMSResponse, len(requests))
	var firstErr error

	for i, req := range requests {
		if err := ctx.Err(); err != nil {
			responses[i] = &SMSResponse{Status: "failed", Error: err.Error()}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		resp, err := provider.SendSMS(ctx, req)
		if err != nil {
			resp = &SMSResponse{Status: "failed", Error: err.Error()}
			if firstErr == nil {
				firstErr = fmt.Errorf("send to %s: %w", req.To, err)
			}
		}
		responses[i] = resp
	}

	return responses, firstErr
}
