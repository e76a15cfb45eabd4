package main

import (
	"context"
	"os"
	"sync"
	"time"

	"jroconnect/internal/api"
	"jroconnect/internal/config"
	"jroconnect/internal/logger"
	"jroconnect/internal/monitor"
	"jroconnect/internal/notifier"
	"jroconnect/internal/scheduler"
	"jroconnect/internal/server"
	"jroconnect/internal/toast"
	"jroconnect/internal/tray"
	"jroconnect/pkg/types"

	"github.com/wailsapp/wails/v2/pkg/runtime"
)

// App struct
type App struct {
	ctx   context.Context
	ctxMu sync.RWMutex

	config   *types.Config
	client   *api.Client
	clientMu sync.RWMutex

	toasts       *toast.Service
	scheduler    *scheduler.Scheduler
	serverCancel context.CancelFunc

	shouldQuit bool         // 标志是否应该退出程序
	quitMu     sync.RWMutex // 保护 shouldQuit 的互斥锁
}

// backend 始终使用当前配置对应的 API 客户端
type backend struct {
	app *App
}

func (b backend) Fetch(ctx context.Context, endpoint string) api.Result {
	return b.app.apiClient().Fetch(ctx, endpoint)
}

func (b backend) Petitions(ctx context.Context) ([]types.Petition, error) {
	return b.app.apiClient().Petitions(ctx)
}

// NewApp creates a new App application struct
func NewApp() *App {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.Default()
	}

	// 日志文件已在 main 中打开，这里只调整级别
	logger.SetLevel(cfg.LogLevel)
	if err != nil {
		logger.Errorf("加载配置失败: %v", err)
	}

	app := &App{
		config: cfg,
		client: newClient(cfg),
	}

	// 提示同时显示在窗口、托盘和（可选）系统通知中
	containers := []toast.Container{
		toast.NewEventContainer(app.windowContext),
		tray.NewContainer(),
	}
	if cfg.Toast.System {
		containers = append(containers, notifier.NewSystemContainer(tray.GetIconData(), monitor.SiteURL(cfg.API.BaseURL)+"justice-index/"))
	}
	app.toasts = toast.NewService(toast.NewDisplay(), toast.NewMultiContainer(containers...), toast.Timeout(cfg.Toast.TimeoutMs, toast.DefaultTimeout))

	be := backend{app: app}
	app.scheduler = scheduler.NewScheduler(scheduler.Options{
		Source:       monitor.NewPetitionMonitor(be, monitor.SiteURL(cfg.API.BaseURL), ""),
		Display:      app.toasts.Display(),
		Container:    app.toasts.Container(),
		PollInterval: time.Duration(cfg.PollInterval) * time.Second,
		ToastTimeout: toast.Timeout(cfg.Toast.TimeoutMs, toast.DefaultTimeout),
	})

	tray.Init(tray.Callbacks{
		OnOpenUI: app.ShowWindow,
		OnCheck:  app.TriggerCheck,
		OnQuit:   app.Quit,
	})

	if err := app.scheduler.Start(); err != nil {
		logger.Errorf("启动调度器失败: %v", err)
	}

	if cfg.Server.Addr != "" {
		ctx, cancel := context.WithCancel(context.Background())
		app.serverCancel = cancel
		srv := server.New(cfg.Server.Addr, be, app.toasts)
		go func() {
			if err := srv.Run(ctx); err != nil {
				logger.Errorf("代理服务异常退出: %v", err)
			}
		}()
	}

	return app
}

func newClient(cfg *types.Config) *api.Client {
	return api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.RequestTimeout)*time.Second)
}

func (a *App) apiClient() *api.Client {
	a.clientMu.RLock()
	defer a.clientMu.RUnlock()
	return a.client
}

// windowContext 返回窗口 context，窗口未启动时为 nil
func (a *App) windowContext() context.Context {
	a.ctxMu.RLock()
	defer a.ctxMu.RUnlock()
	return a.ctx
}

// startup is called when the app starts. The context is saved
// so we can call the runtime methods
func (a *App) startup(ctx context.Context) {
	a.ctxMu.Lock()
	a.ctx = ctx
	a.ctxMu.Unlock()
	logger.Info("应用启动完成")
}

// GetConfig 获取配置
func (a *App) GetConfig() *types.Config {
	return a.config
}

// SaveConfig 保存配置
func (a *App) SaveConfig(cfg *types.Config) error {
	if err := config.Save(cfg); err != nil {
		return err
	}

	if a.config == nil || a.config.LogLevel != cfg.LogLevel {
		logger.SetLevel(cfg.LogLevel)
	}

	if a.config == nil || a.config.API != cfg.API {
		a.clientMu.Lock()
		a.client = newClient(cfg)
		a.clientMu.Unlock()
		logger.Infof("API 地址已更新为 %s", cfg.API.BaseURL)
	}

	a.config = cfg
	a.toasts.SetDefaultTimeout(toast.Timeout(cfg.Toast.TimeoutMs, toast.DefaultTimeout))
	a.scheduler.UpdateConfig(cfg)
	return nil
}

// GetStatus 获取应用状态
func (a *App) GetStatus() map[string]interface{} {
	return map[string]interface{}{
		"running":        a.scheduler.IsRunning(),
		"poll_interval":  a.config.PollInterval,
		"api_base_url":   a.apiClient().BaseURL(),
		"pending_toasts": a.toasts.Display().Pending(),
	}
}

// FetchAPI 代理请求后端接口，失败时返回空结果
func (a *App) FetchAPI(endpoint string) interface{} {
	ctx := a.windowContext()
	if ctx == nil {
		ctx = context.Background()
	}
	return a.apiClient().FetchAPI(ctx, endpoint)
}

// ShowToast 显示提示，timeoutMs 为负数时使用默认时长
func (a *App) ShowToast(message string, timeoutMs int) error {
	_, err := a.toasts.ShowToast(message, timeoutMs)
	return err
}

// GetRecentNotifications 获取最近的通知列表
func (a *App) GetRecentNotifications() []*types.Notification {
	return a.scheduler.GetRecentNotifications()
}

// TriggerCheck 手动触发检查
func (a *App) TriggerCheck() {
	a.scheduler.TriggerCheck()
}

// ShowWindow 显示窗口
func (a *App) ShowWindow() {
	ctx := a.windowContext()
	if ctx == nil {
		logger.Warn("无法显示窗口：context 未初始化，可能窗口已关闭或应用未完全启动")
		return
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("显示窗口时发生错误: %v", r)
		}
	}()
	runtime.WindowShow(ctx)
	logger.Info("显示主窗口")
}

// HideWindow 隐藏窗口
func (a *App) HideWindow() {
	if ctx := a.windowContext(); ctx != nil {
		runtime.WindowHide(ctx)
		logger.Info("隐藏主窗口")
	}
}

// Quit 退出程序
func (a *App) Quit() {
	a.quitMu.Lock()
	if a.shouldQuit {
		a.quitMu.Unlock()
		logger.Warn("退出程序已被调用，跳过重复退出")
		return
	}
	a.shouldQuit = true
	a.quitMu.Unlock()

	logger.Info("开始退出程序")

	if a.serverCancel != nil {
		a.serverCancel()
	}

	// 在 goroutine 中停止调度器，避免阻塞退出流程
	stopDone := make(chan struct{})
	go func() {
		defer close(stopDone)
		a.scheduler.Stop()
	}()

	select {
	case <-stopDone:
		logger.Info("调度器已停止")
	case <-time.After(5 * time.Second):
		logger.Warn("等待调度器停止超时，继续退出流程")
	}

	ctx := a.windowContext()
	if ctx != nil {
		// 先退出 Wails 应用，再退出托盘
		runtime.Quit(ctx)
		go func() {
			time.Sleep(100 * time.Millisecond)
			tray.Quit()
		}()
		return
	}

	logger.Warn("无法退出：context 未初始化，直接退出进程")
	tray.Quit()
	time.Sleep(100 * time.Millisecond)
	os.Exit(0)
}

// ShouldQuit 检查是否应该退出程序
func (a *App) ShouldQuit() bool {
	a.quitMu.RLock()
	defer a.quitMu.RUnlock()
	return a.shouldQuit
}
