package tray

import (
	_ "embed"
	"fmt"
	"os"

	"jroconnect/internal/logger"

	"github.com/getlantern/systray"
)

//go:embed icon.ico
var iconData []byte

// GetIconData 获取图标数据（供其他包使用）
func GetIconData() []byte {
	return iconData
}

// Callbacks 托盘菜单回调
type Callbacks struct {
	OnOpenUI func()
	OnCheck  func()
	OnQuit   func()
}

var callbacks Callbacks

// Init 初始化系统托盘
func Init(cb Callbacks) {
	callbacks = cb

	go func() {
		systray.Run(onReady, onExit)
	}()
}

// BaseTooltip 托盘默认提示文字（包含进程 ID，方便用户查找进程）
func BaseTooltip() string {
	return fmt.Sprintf("JusticeRollOn Connect (PID: %d)", os.Getpid())
}

// onReady 托盘就绪回调
func onReady() {
	if len(iconData) > 0 {
		systray.SetIcon(iconData)
	}
	systray.SetTooltip(BaseTooltip())

	menuOpenUI := systray.AddMenuItem("打开界面", "打开主界面")
	menuCheck := systray.AddMenuItem("立即检查", "立即检查新发布的请愿")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("退出", "退出程序")

	// 这个 goroutine 一直运行到 systray.Run() 退出
	go func() {
		for {
			select {
			case <-menuOpenUI.ClickedCh:
				logger.Info("点击打开界面菜单项")
				run("打开界面", callbacks.OnOpenUI)
			case <-menuCheck.ClickedCh:
				logger.Info("点击立即检查菜单项")
				run("立即检查", callbacks.OnCheck)
			case <-menuQuit.ClickedCh:
				logger.Info("点击退出菜单项")
				if callbacks.OnQuit == nil {
					logger.Warn("退出回调未设置，直接退出托盘")
					systray.Quit()
					continue
				}
				// OnQuit 内部会调用 tray.Quit()
				run("退出程序", callbacks.OnQuit)
			}
		}
	}()
}

// run 在新的 goroutine 中执行回调，避免阻塞托盘事件循环
func run(name string, fn func()) {
	if fn == nil {
		logger.Warnf("%s回调未设置", name)
		return
	}
	go func() {
		defer func() {
			if r := recover(); r != nil {
				logger.Errorf("%s时发生错误: %v", name, r)
			}
		}()
		fn()
	}()
}

// onExit 托盘退出回调
func onExit() {
	logger.Info("系统托盘退出")
}

// Quit 退出托盘
func Quit() {
	systray.Quit()
}

// SetTooltip 设置托盘提示
func SetTooltip(tooltip string) {
	systray.SetTooltip(tooltip)
}
