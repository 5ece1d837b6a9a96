package sms

import (
	"context"
	"fmt"
	"maps"
	"slices"

	"github.com/arsmn/go-smsir/smsir"

	"github.com/Alijeyrad/myvoice_backend/config"
)

// Client sends templated SMS through sms.ir.
type Client struct {
	client          *smsir.Client
	enabled         bool
	welcomeTemplate string
}

// NewFromConfig creates a new SMS client from the application configuration.
// If SMS is disabled, returns a client that no-ops on all operations.
func NewFromConfig(cfg config.SMSConfig) (*Client, error) {
	if !cfg.Enabled {
		return &Client{enabled: false}, nil
	}

	if cfg.SMSIR.APIKey == "" {
		return nil, fmt.Errorf("sms.ir API key required when SMS enabled")
	}
	if cfg.SMSIR.WelcomeTemplateID == "" {
		return nil, fmt.Errorf("sms.ir welcome template required when SMS enabled")
	}

	return &Client{
		client:          smsir.NewClient().WithAuthentication(cfg.SMSIR.APIKey, cfg.SMSIR.SecretKey),
		enabled:         true,
		welcomeTemplate: cfg.SMSIR.WelcomeTemplateID,
	}, nil
}

// SendTemplate sends templateID to mobile with params substituted. The
// template on sms.ir must declare every key in params.
func (c *Client) SendTemplate(ctx context.Context, mobile, templateID string, params map[string]string) error {
	if !c.enabled {
		return nil
	}

	if mobile == "" {
		return fmt.Errorf("mobile number is required")
	}
	if templateID == "" {
		return fmt.Errorf("template ID is required")
	}

	req := &smsir.UltraFastSendRequest{
		Mobile:     mobile,
		TemplateID: templateID,
	}
	for _, k := range slices.Sorted(maps.Keys(params)) {
		req.Parameters = append(req.Parameters, smsir.UltraFastParameter{Key: k, Value: params[k]})
	}

	if _, err := c.client.Verification.UltraFastSend(ctx, req); err != nil {
		return fmt.Errorf("sms.ir send failed: %w", err)
	}

	return nil
}

// SendWelcome sends the post-visit welcome message. The template receives
// the clinic name as "clinic".
func (c *Client) SendWelcome(ctx context.Context, mobile, clinic string) error {
	return c.SendTemplate(ctx, mobile, c.welcomeTemplate, map[string]string{"clinic": clinic})
}

// IsEnabled returns whether SMS sending is enabled.
func (c *Client) IsEnabled() bool {
	return c.enabled
}
