// Package server 通过本地 HTTP 服务对外提供后端代理和提示接口。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"jroconnect/internal/api"
	"jroconnect/internal/logger"
	"jroconnect/pkg/types"

	"github.com/gin-gonic/gin"
)

// Fetcher 代理请求
type Fetcher interface {
	Fetch(ctx context.Context, endpoint string) api.Result
}

// Toaster 显示提示，timeoutMs 为负数时使用默认时长
type Toaster interface {
	ShowToast(message string, timeoutMs int) (*types.Toast, error)
}

// Server 本地代理服务
type Server struct {
	addr    string
	fetcher Fetcher
	toaster Toaster
	engine  *gin.Engine
}

// New 创建代理服务，toaster 为 nil 时不注册 /toasts
func New(addr string, fetcher Fetcher, toaster Toaster) *Server {
	s := &Server{addr: addr, fetcher: fetcher, toaster: toaster}
	s.engine = s.routes()
	return s
}

// Handler 返回 HTTP 处理器
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/proxy/*endpoint", s.proxy)
	r.GET("/proxy-strict/*endpoint", s.proxyStrict)
	if s.toaster != nil {
		r.POST("/toasts", s.createToast)
	}
	return r
}

// endpointOf 取出 *endpoint 参数（去掉开头的 /）并带上查询参数
func endpointOf(c *gin.Context) string {
	endpoint := strings.TrimPrefix(c.Param("endpoint"), "/")
	if q := c.Request.URL.RawQuery; q != "" {
		endpoint += "?" + q
	}
	return endpoint
}

// proxy 返回代理结果，失败时返回空结果，状态码始终为 200
func (s *Server) proxy(c *gin.Context) {
	res := s.fetcher.Fetch(c.Request.Context(), endpointOf(c))
	c.JSON(http.StatusOK, res.OrEmpty())
}

// proxyStrict 返回代理结果，失败时返回 502 和错误类型
func (s *Server) proxyStrict(c *gin.Context) {
	res := s.fetcher.Fetch(c.Request.Context(), endpointOf(c))
	if res.Err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error": res.Err.Error(),
			"kind":  api.KindOf(res.Err),
		})
		return
	}
	c.JSON(http.StatusOK, res.Value)
}

// toastRequest message 可以为空字符串，但字段必须存在
type toastRequest struct {
	Message   *string `json:"message"`
	TimeoutMs *int    `json:"timeout_ms"`
}

func (s *Server) createToast(c *gin.Context) {
	var req toastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Message == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}

	timeoutMs := -1
	if req.TimeoutMs != nil {
		if *req.TimeoutMs < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "timeout_ms must be non-negative"})
			return
		}
		timeoutMs = *req.TimeoutMs
	}

	t, err := s.toaster.ShowToast(*req.Message, timeoutMs)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":         t.ID,
		"message":    t.Message,
		"timeout_ms": t.Timeout.Milliseconds(),
	})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debugf("%s %s %d %v", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Run 启动服务，ctx 结束时优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("代理服务监听 %s", s.addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("代理服务启动失败: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭代理服务失败: %w", err)
	}
	logger.Info("代理服务已关闭")
	return nil
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}
