package gis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultAppName     = "ПК МС"
	defaultAddressType = 1
	defaultPageSize    = 300
)

// ClientConfig cấu hình client dịch vụ gợi ý
type ClientConfig struct {
	BaseURL     string // vd https://address.pochta.ru/suggest/api/v4_5
	Token       string // Bearer token, không kèm tiền tố "Bearer "
	AppName     string
	AddressType int
	PageSize    int // countOnPage mặc định cho children
	Timeout     time.Duration
}

// Client HTTP client của dịch vụ gợi ý, cài đặt SuggestionService
type Client struct {
	httpClient  *http.Client
	searchURL   string
	childrenURL string
	token       string
	appName     string
	addressType int
	pageSize    int
	logger      *zap.Logger
}

var _ SuggestionService = (*Client)(nil)

// NewClient tạo mới Client
func NewClient(cfg ClientConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.AppName == "" {
		cfg.AppName = defaultAppName
	}
	if cfg.AddressType == 0 {
		cfg.AddressType = defaultAddressType
	}
	if cfg.PageSize <= 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		searchURL:   base,
		childrenURL: base + "/children",
		token:       strings.TrimPrefix(cfg.Token, "Bearer "),
		appName:     cfg.AppName,
		addressType: cfg.AddressType,
		pageSize:    cfg.PageSize,
		logger:      logger,
	}
}

// Search tìm kiếm địa chỉ theo văn bản tự do
func (c *Client) Search(ctx context.Context, text string) (*SearchResponse, error) {
	req := SearchRequest{
		AppName:     c.appName,
		ReqID:       uuid.NewString(),
		RmFedCities: false,
		Addr:        text,
		AddressType: c.addressType,
	}

	var resp SearchResponse
	if err := c.post(ctx, c.searchURL, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("GIS search",
		zap.String("addr", text),
		zap.String("req_id", req.ReqID),
		zap.Int("matches", len(resp.Addr)),
		zap.String("error_code", resp.ErrorCode))
	return &resp, nil
}

// Children lấy các địa chỉ con của query.ParentID
func (c *Client) Children(ctx context.Context, query ChildrenQuery) (*ChildrenResponse, error) {
	pageSize := query.PageSize
	if pageSize <= 0 {
		pageSize = c.pageSize
	}

	req := ChildrenRequest{
		AppName:     c.appName,
		ReqID:       uuid.NewString(),
		CountOnPage: pageSize,
		ParentGUID:  query.ParentID,
		Addr:        query.Filter,
	}

	var resp ChildrenResponse
	if err := c.post(ctx, c.childrenURL, req, &resp); err != nil {
		return nil, err
	}

	c.logger.Debug("GIS children",
		zap.String("parent", query.ParentID),
		zap.String("filter", query.Filter),
		zap.Int("count_on_page", pageSize),
		zap.Int("children", len(resp.Children)))
	return &resp, nil
}

// ByID lấy nút theo ID thông qua một con bất kỳ của nó (children với countOnPage = 1).
// Nút lá không có con nên trả về ErrNotFound.
func (c *Client) ByID(ctx context.Context, id string) (*Address, error) {
	resp, err := c.Children(ctx, ChildrenQuery{ParentID: id, PageSize: 1})
	if err != nil {
		return nil, err
	}
	if len(resp.Children) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return &resp.Children[0], nil
}

func (c *Client) post(ctx context.Context, url string, body, out interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("lỗi marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("lỗi tạo request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("GIS request thất bại", zap.Error(err), zap.String("url", url))
		return fmt.Errorf("lỗi gọi dịch vụ GIS: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("lỗi đọc phản hồi GIS: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("GIS upstream error", zap.Int("status", resp.StatusCode), zap.String("url", url))
		return fmt.Errorf("dịch vụ GIS trả về status %d", resp.StatusCode)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return ErrEmptyResponse
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("lỗi decode phản hồi GIS: %w", err)
	}
	return nil
}
