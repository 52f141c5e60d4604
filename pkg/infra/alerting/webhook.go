package alerting

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/valyala/fasthttp"
)

const webhookTimeout = 10 * time.Second

type WebhookSender struct {
	url    string
	client *fasthttp.Client
}

func NewWebhookSender(url string) *WebhookSender {
	return &WebhookSender{
		url: url,
		client: &fasthttp.Client{
			ReadTimeout:              webhookTimeout,
			WriteTimeout:             webhookTimeout,
			NoDefaultUserAgentHeader: true,
		},
	}
}

func (w *WebhookSender) Name() string {
	return "webhook"
}

func (w *WebhookSender) Send(ctx context.Context, event Event) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal alert payload: %w", err)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(w.url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	if err := w.client.DoTimeout(req, resp, webhookTimeout); err != nil {
		return fmt.Errorf("webhook delivery failed: %w", err)
	}

	status := resp.StatusCode()
	if status < fasthttp.StatusOK || status >= fasthttp.StatusMultipleChoices {
		return fmt.Errorf("webhook responded %d", status)
	}
	return nil
}
