package main

import (
	"context"
	"embed"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jroconnect/internal/logger"
	"jroconnect/internal/singleinstance"

	"github.com/spf13/pflag"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"github.com/wailsapp/wails/v2/pkg/runtime"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	minimized := pflag.Bool("minimized", false, "启动时只显示托盘图标")
	pflag.Parse()

	// 单实例检查需要日志，先按 debug 级别初始化
	if err := logger.Init("debug", true); err != nil {
		panic(err)
	}
	defer logger.Close()

	singleinstance.CheckAndExit()
	defer singleinstance.Unlock()

	app := NewApp()

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-sigCtx.Done()
		if app.ShouldQuit() {
			return
		}
		logger.Info("收到退出信号，开始退出程序")
		app.Quit()
		time.Sleep(2 * time.Second)
		logger.Warn("程序未能正常退出，强制退出")
		os.Exit(1)
	}()

	err := wails.Run(&options.App{
		Title:       "JusticeRollOn Connect",
		Width:       480,
		Height:      640,
		MinWidth:    360,
		MinHeight:   400,
		StartHidden: *minimized,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		BackgroundColour: &options.RGBA{R: 27, G: 38, B: 54, A: 1},
		OnStartup:        app.startup,
		OnBeforeClose: func(ctx context.Context) bool {
			if app.ShouldQuit() {
				return false
			}
			// 关闭窗口只隐藏到托盘
			runtime.WindowHide(ctx)
			return true
		},
		Bind: []interface{}{
			app,
		},
	})
	if err != nil {
		logger.Errorf("启动窗口失败: %v", err)
		os.Exit(1)
	}
}
