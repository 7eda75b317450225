package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Out 普通输出目标，默认终端（测试中可替换）
var Out io.Writer = color.Output

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warnColor    = color.New(color.FgYellow)
)

// PrintJSON 以缩进JSON输出
func PrintJSON(data interface{}) error {
	encoder := json.NewEncoder(Out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// Success 成功消息
func Success(format string, args ...interface{}) {
	successColor.Fprintf(Out, "✅ "+format+"\n", args...)
}

// Error 错误消息，写到stderr
func Error(format string, args ...interface{}) {
	errorColor.Fprintf(color.Error, "❌ "+format+"\n", args...)
}

// Info 提示信息
func Info(format string, args ...interface{}) {
	infoColor.Fprintf(Out, "ℹ️  "+format+"\n", args...)
}

// Warning 警告信息
func Warning(format string, args ...interface{}) {
	warnColor.Fprintf(Out, "⚠️  "+format+"\n", args...)
}

// ProgressBar 渲染固定宽度的进度条，percent取值0~100
func ProgressBar(percent float64, width int) string {
	if width <= 0 {
		width = 20
	}
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := int(percent / 100 * float64(width))
	return fmt.Sprintf("[%s%s] %5.1f%%", strings.Repeat("#", filled), strings.Repeat("-", width-filled), percent)
}
