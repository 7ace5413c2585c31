// Package logger 提供布局与渲染过程中共用的日志输出。
package logger

import (
	"io"
	"log"
	"os"
)

// ProgressLogger 记录渲染的主要步骤（页数、字体加载等）。
var ProgressLogger = log.New(os.Stdout, "folio.progress: ", log.LstdFlags)

// WarningLogger 记录不致命的问题，例如溢出的单词、被忽略的标记指令。
var WarningLogger = log.New(os.Stdout, "folio.warning: ", log.Lmsgprefix)

// SetOutput 同时重定向两个日志的输出，测试中通常传入 io.Discard。
func SetOutput(w io.Writer) {
	ProgressLogger.SetOutput(w)
	WarningLogger.SetOutput(w)
}
