package shiprocket

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/craftkart/order-service/internal/config"
	"github.com/craftkart/order-service/internal/signature"
)

const (
	headerAPIKey    = "X-Api-Key"
	headerSignature = "X-Api-HMAC-SHA256"

	productPath    = "/wh/v1/custom/product"
	collectionPath = "/wh/v1/custom/collection"
)

type ProductPush struct {
	ID       int64         `json:"id"`
	Title    string        `json:"title"`
	Variants []VariantPush `json:"variants"`
}

type VariantPush struct {
	VariantID string  `json:"variant_id"`
	SKU       string  `json:"sku"`
	Title     string  `json:"title"`
	Price     float64 `json:"price"`
	Stock     int     `json:"stock"`
}

type CollectionPush struct {
	ID int64 `json:"id"`
}

// Client sends signed catalog-update webhooks to the shipping
// provider. Every request carries the API key and a base64
// HMAC-SHA256 of the JSON body; the fixed timeout makes a hung
// provider count as a failure for retry purposes.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	apiKey     string
	signer     *signature.Signer
}

func NewClient(logger *slog.Logger, cfg config.Shiprocket, signer *signature.Signer) *Client {
	return &Client{
		logger:     logger.With(slog.String("client", "shiprocket")),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		signer:     signer,
	}
}

func (c *Client) PushProduct(ctx context.Context, p ProductPush) error {
	return c.post(ctx, productPath, p)
}

func (c *Client) PushCollection(ctx context.Context, col CollectionPush) error {
	return c.post(ctx, collectionPath, col)
}

func (c *Client) post(ctx context.Context, path string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set(headerSignature, c.signer.Sign(body))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("provider returned status %d for %s", resp.StatusCode, path)
	}

	c.logger.DebugContext(ctx, "catalog push delivered", slog.String("path", path))
	return nil
}
