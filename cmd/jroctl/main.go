// jroctl 是不带窗口的命令行工具：代理请求后端接口、运行本地代理服务或推送一条提示。
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"jroconnect/internal/api"
	"jroconnect/internal/config"
	"jroconnect/internal/logger"
	"jroconnect/internal/monitor"
	"jroconnect/internal/notifier"
	"jroconnect/internal/server"
	"jroconnect/internal/toast"
	"jroconnect/pkg/types"

	"github.com/spf13/pflag"
)

const usage = `用法:
  jroctl fetch <endpoint> [--strict]   请求 base_url+endpoint 并输出 JSON
  jroctl serve                         运行本地代理服务
  jroctl toast <message>               推送一条系统通知

参数:
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("jroctl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", "", "配置文件路径")
	fs.String("base-url", config.DefaultAPIBaseURL, "后端 API 地址")
	fs.Int("timeout", 0, "请求超时（秒），0 表示不设置")
	fs.String("addr", config.DefaultServerAddr, "代理服务监听地址")
	fs.String("log-level", "warn", "日志级别")
	strict := fs.Bool("strict", false, "请求失败时输出错误并返回非 0")
	timeoutMs := fs.Int("timeout-ms", -1, "提示显示时长（毫秒），默认使用配置")
	fs.Usage = func() {
		fmt.Fprint(stderr, usage)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	// 日志输出到 stderr，stdout 只输出结果
	logLevel, _ := fs.GetString("log-level")
	logger.InitWithWriter(logLevel, stderr)

	if err := config.BindFlags(fs); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	var (
		cfg *types.Config
		err error
	)
	if *configPath != "" {
		cfg, err = config.LoadFrom(*configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(stderr, "加载配置失败: %v\n", err)
		return 1
	}

	client := api.NewClient(cfg.API.BaseURL, time.Duration(cfg.API.RequestTimeout)*time.Second)

	switch cmd := fs.Arg(0); cmd {
	case "fetch":
		return fetch(ctx, client, fs.Arg(1), *strict, stdout, stderr)
	case "serve":
		return serve(ctx, cfg, client, stderr)
	case "toast":
		if fs.NArg() < 2 {
			fs.Usage()
			return 2
		}
		return pushToast(cfg, fs.Arg(1), *timeoutMs, stdout, stderr)
	default:
		fmt.Fprintf(stderr, "未知命令: %s\n", cmd)
		fs.Usage()
		return 2
	}
}

func fetch(ctx context.Context, client *api.Client, endpoint string, strict bool, stdout, stderr io.Writer) int {
	res := client.Fetch(ctx, endpoint)
	if strict && res.Err != nil {
		fmt.Fprintln(stderr, res.Err)
		return 1
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res.OrEmpty()); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func serve(ctx context.Context, cfg *types.Config, client *api.Client, stderr io.Writer) int {
	if cfg.Server.Addr == "" {
		fmt.Fprintln(stderr, "未配置代理服务监听地址")
		return 1
	}

	var toaster server.Toaster
	if cfg.Toast.System {
		system := notifier.NewSystemContainer(nil, monitor.SiteURL(cfg.API.BaseURL)+"justice-index/")
		toaster = toast.NewService(nil, system, toast.Timeout(cfg.Toast.TimeoutMs, toast.DefaultTimeout))
	}

	if err := server.New(cfg.Server.Addr, client, toaster).Run(ctx); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func pushToast(cfg *types.Config, message string, timeoutMs int, stdout, stderr io.Writer) int {
	system := notifier.NewSystemContainer(nil, monitor.SiteURL(cfg.API.BaseURL)+"justice-index/")
	svc := toast.NewService(nil, system, toast.Timeout(cfg.Toast.TimeoutMs, toast.DefaultTimeout))

	t, err := svc.ShowToast(message, timeoutMs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintln(stdout, t.ID)

	// 等待提示到期后再退出
	svc.Display().Wait()
	return 0
}
