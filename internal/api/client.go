// Package api 代理 JusticeRollOn 后端的 REST 接口。
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"jroconnect/internal/logger"

	"github.com/sirupsen/logrus"
)

// Result 一次代理请求的结果：成功时 Value 为解码后的 JSON，失败时 Err 非空
type Result struct {
	Value any
	Err   error
}

// OK 请求是否成功
func (r Result) OK() bool {
	return r.Err == nil
}

// OrEmpty 失败时返回空结果：解码失败为 nil，其他失败为空 map
func (r Result) OrEmpty() any {
	if r.Err == nil {
		return r.Value
	}
	if KindOf(r.Err) == KindDecode {
		return nil
	}
	return map[string]any{}
}

// Client 后端 API 客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient 创建新的客户端，timeout 为 0 时不设置超时
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// NewClientWithHTTP 使用自定义 http.Client 创建客户端
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

// BaseURL 返回基础地址
func (c *Client) BaseURL() string {
	return c.baseURL
}

// URL 返回 endpoint 对应的完整地址，endpoint 原样拼接在基础地址后
func (c *Client) URL(endpoint string) string {
	return c.baseURL + endpoint
}

// FetchAPI 请求 endpoint 并返回解码后的 JSON，任何失败都返回空结果而不返回错误
func (c *Client) FetchAPI(ctx context.Context, endpoint string) any {
	return c.Fetch(ctx, endpoint).OrEmpty()
}

// Fetch 对 baseURL+endpoint 发起 GET 请求并解码 JSON 响应
func (c *Client) Fetch(ctx context.Context, endpoint string) Result {
	return c.get(ctx, endpoint, c.URL(endpoint))
}

// get 对完整地址 reqURL 发起请求，endpoint 只用于日志和错误信息
func (c *Client) get(ctx context.Context, endpoint, reqURL string) Result {
	log := logger.WithFields(logrus.Fields{"endpoint": endpoint, "url": reqURL})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return failure(log, &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("创建请求失败: %w", err)})
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "JROConnect/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return failure(log, &Error{Kind: KindTransport, Endpoint: endpoint, Err: err})
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(log, &Error{Kind: KindTransport, Endpoint: endpoint, Err: fmt.Errorf("读取响应失败: %w", err)})
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return failure(log, &Error{Kind: KindStatus, Endpoint: endpoint, StatusCode: resp.StatusCode, Err: errors.New(truncate(string(body), 200))})
	}

	var value any
	if err := json.Unmarshal(body, &value); err != nil {
		return failure(log, &Error{Kind: KindDecode, Endpoint: endpoint, Err: err})
	}

	log.WithField("status", resp.StatusCode).Debug("代理请求成功")
	return Result{Value: value}
}

func failure(log *logrus.Entry, err *Error) Result {
	log.WithField("kind", err.Kind).Warnf("代理请求失败: %v", err)
	return Result{Err: err}
}

// truncate 按字符截断，避免截断多字节字符
func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
