package scheduler

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"jroconnect/internal/logger"
	"jroconnect/internal/toast"
	"jroconnect/pkg/types"

	"github.com/robfig/cron/v3"
)

// maxRecent 最近通知列表最多保留的条数
const maxRecent = 50

// UpdateSource 产生新通知的监控源
type UpdateSource interface {
	FetchUpdates(ctx context.Context) ([]*types.Notification, error)
}

// Options 调度器配置
type Options struct {
	Source       UpdateSource
	Display      *toast.Display
	Container    toast.Container
	PollInterval time.Duration
	ToastTimeout time.Duration
	DataFile     string // 最近通知列表文件，为空时使用默认路径
}

// Scheduler 轮询调度器
type Scheduler struct {
	source       UpdateSource
	display      *toast.Display
	container    toast.Container
	pollInterval time.Duration
	toastTimeout time.Duration
	dataFile     string

	cron    *cron.Cron
	entryID cron.EntryID
	ctx     context.Context
	cancel  context.CancelFunc
	running bool
	mu      sync.RWMutex

	checkMu sync.Mutex // 同一时间只执行一次检查

	recentNotifications []*types.Notification
	notificationsMu     sync.RWMutex
}

// NewScheduler 创建新的调度器
func NewScheduler(opts Options) *Scheduler {
	if opts.Display == nil {
		opts.Display = toast.NewDisplay()
	}
	if opts.DataFile == "" {
		opts.DataFile = defaultDataFile()
	}

	s := &Scheduler{
		source:       opts.Source,
		display:      opts.Display,
		container:    opts.Container,
		pollInterval: opts.PollInterval,
		toastTimeout: opts.ToastTimeout,
		dataFile:     opts.DataFile,
	}

	if err := s.loadNotifications(); err != nil {
		logger.Warnf("加载通知列表失败: %v", err)
	}
	return s
}

// Start 启动调度器：立即检查一次，之后按轮询间隔检查
func (s *Scheduler) Start() error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.cron = cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	id, err := s.cron.AddFunc(s.cronExpr(), s.check)
	if err != nil {
		s.cancel()
		s.mu.Unlock()
		return fmt.Errorf("添加定时任务失败: %w", err)
	}
	s.entryID = id
	s.running = true
	s.mu.Unlock()

	logger.Infof("启动轮询调度器，间隔 %v", s.pollInterval)
	go s.check()
	s.cron.Start()
	return nil
}

// Stop 停止调度器，最多等待 3 秒
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	c, cancel := s.cron, s.cancel
	s.mu.Unlock()

	logger.Info("停止轮询调度器")
	cancel()

	select {
	case <-c.Stop().Done():
		logger.Info("调度器已完全停止")
	case <-time.After(3 * time.Second):
		logger.Warn("等待调度器停止超时，强制继续退出")
	}
}

// IsRunning 检查是否正在运行
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// UpdateConfig 更新轮询间隔和提示时长，运行中时重新注册定时任务
func (s *Scheduler) UpdateConfig(cfg *types.Config) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pollInterval = time.Duration(cfg.PollInterval) * time.Second
	s.toastTimeout = toast.Timeout(cfg.Toast.TimeoutMs, toast.DefaultTimeout)

	if !s.running {
		return
	}
	s.cron.Remove(s.entryID)
	id, err := s.cron.AddFunc(s.cronExpr(), s.check)
	if err != nil {
		logger.Errorf("更新定时任务失败: %v", err)
		return
	}
	s.entryID = id
	logger.Infof("轮询间隔已更新为 %v", s.pollInterval)
}

// cronExpr 返回 cron 表达式，调用方需持有锁
func (s *Scheduler) cronExpr() string {
	interval := s.pollInterval
	if interval < time.Second {
		interval = time.Second
	}
	return "@every " + interval.String()
}

// TriggerCheck 手动触发检查
func (s *Scheduler) TriggerCheck() {
	if !s.IsRunning() {
		logger.Warn("调度器未运行，无法触发检查")
		return
	}
	logger.Info("手动触发检查...")
	go s.check()
}

// check 检查一次监控源，新通知加入列表并显示提示
func (s *Scheduler) check() {
	s.checkMu.Lock()
	defer s.checkMu.Unlock()

	s.mu.RLock()
	ctx := s.ctx
	timeout := s.toastTimeout
	s.mu.RUnlock()
	if ctx == nil || ctx.Err() != nil {
		return
	}

	logger.Debug("检查新发布的请愿...")
	notifications, err := s.source.FetchUpdates(ctx)
	if err != nil {
		logger.Errorf("检查请愿失败: %v", err)
		return
	}

	if len(notifications) > 0 {
		logger.Infof("获取到 %d 条新通知", len(notifications))
		for _, n := range notifications {
			if _, err := s.display.ShowFor(s.container, n.Title, timeout); err != nil {
				logger.Errorf("显示提示失败: %v", err)
			}
		}
		s.addNotifications(notifications)
	}
	logger.Info("请愿检查完成")
}

// addNotifications 添加通知到最近通知列表顶部，已存在的移动到顶部，最多保留 50 条
func (s *Scheduler) addNotifications(notifications []*types.Notification) {
	if len(notifications) == 0 {
		return
	}

	s.notificationsMu.Lock()

	// 同一批次内去重，批次顺序保持不变
	batch := make([]*types.Notification, 0, len(notifications))
	inBatch := make(map[string]bool, len(notifications))
	for _, n := range notifications {
		if inBatch[n.ID] {
			continue
		}
		inBatch[n.ID] = true
		batch = append(batch, n)
	}

	merged := make([]*types.Notification, 0, len(batch)+len(s.recentNotifications))
	merged = append(merged, batch...)
	for _, n := range s.recentNotifications {
		if !inBatch[n.ID] {
			merged = append(merged, n)
		}
	}
	if len(merged) > maxRecent {
		merged = merged[:maxRecent]
	}
	s.recentNotifications = merged

	toSave := make([]*types.Notification, len(merged))
	copy(toSave, merged)
	s.notificationsMu.Unlock()

	// 在锁外写文件
	if err := s.saveNotifications(toSave); err != nil {
		logger.Warnf("保存通知列表失败: %v", err)
	}
}

// GetRecentNotifications 获取最近的通知列表
func (s *Scheduler) GetRecentNotifications() []*types.Notification {
	s.notificationsMu.RLock()
	defer s.notificationsMu.RUnlock()

	result := make([]*types.Notification, len(s.recentNotifications))
	copy(result, s.recentNotifications)
	return result
}

func defaultDataFile() string {
	dataDir := filepath.Join(".", "data")
	if _, err := os.Stat(dataDir); err == nil {
		return filepath.Join(dataDir, "notifications.json")
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		return filepath.Join(homeDir, ".jroconnect", "data", "notifications.json")
	}
	return filepath.Join(dataDir, "notifications.json")
}

func (s *Scheduler) saveNotifications(notifications []*types.Notification) error {
	if err := os.MkdirAll(filepath.Dir(s.dataFile), 0755); err != nil {
		return fmt.Errorf("创建目录失败: %w", err)
	}

	data, err := json.MarshalIndent(notifications, "", "  ")
	if err != nil {
		return fmt.Errorf("序列化通知列表失败: %w", err)
	}

	if err := os.WriteFile(s.dataFile, data, 0644); err != nil {
		return fmt.Errorf("写入文件失败: %w", err)
	}

	logger.Debugf("通知列表已保存到文件: %s (共 %d 条)", s.dataFile, len(notifications))
	return nil
}

func (s *Scheduler) loadNotifications() error {
	data, err := os.ReadFile(s.dataFile)
	if os.IsNotExist(err) {
		logger.Debug("通知列表文件不存在，跳过加载")
		return nil
	}
	if err != nil {
		return fmt.Errorf("读取文件失败: %w", err)
	}

	var notifications []*types.Notification
	if err := json.Unmarshal(data, &notifications); err != nil {
		return fmt.Errorf("解析通知列表失败: %w", err)
	}
	if len(notifications) > maxRecent {
		notifications = notifications[:maxRecent]
	}

	s.notificationsMu.Lock()
	s.recentNotifications = notifications
	s.notificationsMu.Unlock()

	logger.Infof("成功加载 %d 条通知", len(notifications))
	return nil
}
