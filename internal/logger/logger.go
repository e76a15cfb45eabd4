package logger

import (
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

const appDirName = ".jroconnect"

var (
	logger  *logrus.Logger
	logFile *os.File // 当前打开的日志文件，重新初始化时关闭
	mu      sync.RWMutex

	ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*m`)
)

// plainWriter 写入文件前去掉 ANSI 颜色代码
type plainWriter struct {
	w io.Writer
}

func (p *plainWriter) Write(b []byte) (int, error) {
	if _, err := p.w.Write(ansiPattern.ReplaceAll(b, nil)); err != nil {
		return 0, err
	}
	return len(b), nil
}

// teeWriter 依次写入所有 writer，单个 writer 失败不影响其他 writer（GUI 模式下 stdout 可能不可用）
type teeWriter struct {
	writers []io.Writer
}

func (t *teeWriter) Write(b []byte) (int, error) {
	for _, w := range t.writers {
		_, _ = w.Write(b)
	}
	return len(b), nil
}

// Init 初始化日志系统
func Init(logLevel string, logToFile bool) error {
	if !logToFile {
		InitWithWriter(logLevel, os.Stdout)
		return nil
	}

	logDir := getLogDir()
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return err
	}

	// 按日期分文件：jroconnect-2025-01-15.log
	name := "jroconnect-" + time.Now().Format("2006-01-02") + ".log"
	file, err := os.OpenFile(filepath.Join(logDir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}

	install(logLevel, &teeWriter{writers: []io.Writer{os.Stdout, &plainWriter{w: file}}}, file)
	return nil
}

// InitWithWriter 使用指定输出初始化日志（命令行模式和测试使用）
func InitWithWriter(logLevel string, out io.Writer) {
	install(logLevel, out, nil)
}

func install(logLevel string, out io.Writer, file *os.File) {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
		ForceColors:     out == os.Stdout,
	})

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	l.SetLevel(level)
	l.SetOutput(out)

	mu.Lock()
	old := logFile
	logger, logFile = l, file
	mu.Unlock()

	if old != nil && old != file {
		_ = old.Close()
	}
}

// SetLevel 只修改日志级别，不重新打开日志文件
func SetLevel(logLevel string) {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		level = logrus.DebugLevel
	}
	GetLogger().SetLevel(level)
}

// Close 关闭日志文件，之后只输出到控制台
func Close() {
	mu.Lock()
	file := logFile
	logFile = nil
	if file != nil {
		logger.SetOutput(os.Stdout)
	}
	mu.Unlock()

	if file != nil {
		_ = file.Close()
	}
}

// GetLogger 获取日志实例
func GetLogger() *logrus.Logger {
	mu.RLock()
	l := logger
	mu.RUnlock()
	if l != nil {
		return l
	}

	// 未初始化时只输出到控制台
	InitWithWriter("debug", os.Stdout)
	mu.RLock()
	defer mu.RUnlock()
	return logger
}

// WithFields 返回带结构化字段的日志条目
func WithFields(fields logrus.Fields) *logrus.Entry {
	return GetLogger().WithFields(fields)
}

// Debug 记录 debug 级别日志
func Debug(args ...interface{}) {
	GetLogger().Debug(args...)
}

// Debugf 记录格式化 debug 级别日志
func Debugf(format string, args ...interface{}) {
	GetLogger().Debugf(format, args...)
}

// Info 记录 info 级别日志
func Info(args ...interface{}) {
	GetLogger().Info(args...)
}

// Infof 记录格式化 info 级别日志
func Infof(format string, args ...interface{}) {
	GetLogger().Infof(format, args...)
}

// Warn 记录 warn 级别日志
func Warn(args ...interface{}) {
	GetLogger().Warn(args...)
}

// Warnf 记录格式化 warn 级别日志
func Warnf(format string, args ...interface{}) {
	GetLogger().Warnf(format, args...)
}

// Error 记录 error 级别日志
func Error(args ...interface{}) {
	GetLogger().Error(args...)
}

// Errorf 记录格式化 error 级别日志
func Errorf(format string, args ...interface{}) {
	GetLogger().Errorf(format, args...)
}

// AppDir 返回应用数据目录（~/.jroconnect），无法获取用户目录时返回当前目录
func AppDir() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return filepath.Join(homeDir, appDirName)
}

func getLogDir() string {
	return filepath.Join(AppDir(), "logs")
}
