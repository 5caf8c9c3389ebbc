package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Dataset - датасет каталога в том объеме, который нужен форме закрытия
type Dataset struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Title string `json:"title"`
}

// CatalogClient - клиент каталога открытых данных (реестр организаций
// и датасетов). Авторизация и поиск остаются на стороне каталога.
type CatalogClient interface {
	OrganizationExists(ctx context.Context, id string) (bool, error)
	OrganizationDatasets(ctx context.Context, id string) ([]Dataset, error)
	RecentDatasets(ctx context.Context, rows int) ([]Dataset, error)
}

type catalogClient struct {
	baseURL string
	token   string
	client  *http.Client
}

type CatalogConfig struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

func NewCatalogClient(config CatalogConfig) CatalogClient {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &catalogClient{
		baseURL: config.BaseURL,
		token:   config.Token,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:       10,
				IdleConnTimeout:    30 * time.Second,
				DisableCompression: false,
			},
		},
	}
}

// Конверт ответа каталога
type actionResponse struct {
	Success bool            `json:"success"`
	Result  json.RawMessage `json:"result"`
}

func (c *catalogClient) doAction(ctx context.Context, action string, params url.Values) (json.RawMessage, error) {
	endpoint := fmt.Sprintf("%s/action/%s?%s", c.baseURL, action, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("User-Agent", "Andromeda-DataRequests/1.0")
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d for %s", resp.StatusCode, action)
	}

	var envelope actionResponse
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}

	if !envelope.Success {
		return nil, fmt.Errorf("catalog action %s was not successful", action)
	}

	return envelope.Result, nil
}

func (c *catalogClient) OrganizationExists(ctx context.Context, id string) (bool, error) {
	params := url.Values{}
	params.Set("id", id)

	result, err := c.doAction(ctx, "organization_show", params)
	if err != nil {
		return false, err
	}

	return result != nil, nil
}

func (c *catalogClient) OrganizationDatasets(ctx context.Context, id string) ([]Dataset, error) {
	params := url.Values{}
	params.Set("id", id)
	params.Set("include_datasets", "true")

	result, err := c.doAction(ctx, "organization_show", params)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("organization %s not found", id)
	}

	var org struct {
		Packages []Dataset `json:"packages"`
	}
	if err := json.Unmarshal(result, &org); err != nil {
		return nil, fmt.Errorf("decode organization datasets: %w", err)
	}

	return org.Packages, nil
}

func (c *catalogClient) RecentDatasets(ctx context.Context, rows int) ([]Dataset, error) {
	params := url.Values{}
	params.Set("rows", strconv.Itoa(rows))
	params.Set("sort", "metadata_modified desc")

	result, err := c.doAction(ctx, "package_search", params)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, fmt.Errorf("dataset search is unavailable")
	}

	var search struct {
		Results []Dataset `json:"results"`
	}
	if err := json.Unmarshal(result, &search); err != nil {
		return nil, fmt.Errorf("decode dataset search: %w", err)
	}

	return search.Results, nil
}
