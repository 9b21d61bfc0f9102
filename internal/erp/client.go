package erp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Client consumes the external warehouse/ERP REST API: stock lookup,
// asset composition and dismantling requests.
type Client struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// StockItem is one inventory position reported by the ERP for a warehouse
type StockItem struct {
	Code     string  `json:"code"`
	Title    string  `json:"title"`
	Quantity float64 `json:"quantity"`
	Unit     string  `json:"unit"`
	Price    float64 `json:"price"`
}

// AssetComponent is one part of a composite asset
type AssetComponent struct {
	Code     string  `json:"code"`
	Title    string  `json:"title"`
	Quantity float64 `json:"quantity"`
}

type DismantleRequest struct {
	AssetCode     string `json:"asset_code"`
	WarehouseCode string `json:"warehouse_code"`
	Note          string `json:"note"`
}

type DismantleResponse struct {
	RequestID string `json:"request_id"`
	Status    string `json:"status"`
}

// Stock returns the current inventory of an ERP warehouse
func (c *Client) Stock(ctx context.Context, warehouseCode string) ([]StockItem, error) {
	var items []StockItem
	url := fmt.Sprintf("%s/api/v1/warehouses/%s/stock", c.baseURL, warehouseCode)
	if err := c.getJSON(ctx, url, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AssetComposition returns the parts list of a composite asset
func (c *Client) AssetComposition(ctx context.Context, assetCode string) ([]AssetComponent, error) {
	var components []AssetComponent
	url := fmt.Sprintf("%s/api/v1/assets/%s/composition", c.baseURL, assetCode)
	if err := c.getJSON(ctx, url, &components); err != nil {
		return nil, err
	}
	return components, nil
}

// Dismantle submits an asset dismantling request to the ERP
func (c *Client) Dismantle(ctx context.Context, req DismantleRequest) (*DismantleResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	url := c.baseURL + "/api/v1/dismantle"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("erp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("erp returned status %d", resp.StatusCode)
	}

	var out DismantleResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("erp response malformed: %w", err)
	}
	return &out, nil
}

func (c *Client) getJSON(ctx context.Context, url string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Api-Key", c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("erp request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("erp returned status %d", resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("erp response malformed: %w", err)
	}
	return nil
}
