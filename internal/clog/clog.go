// Package clog is the client's leveled printf logger. Errors and warnings
// always go to stdout; debug output only when enabled. Each level is
// mirrored to a timestamped file under the log directory, created on first
// use.
package clog

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	mu sync.Mutex

	out    io.Writer = os.Stdout
	logDir           = "logs"

	errorLogger  *log.Logger
	errorLogPath string
	errorLogOnce sync.Once

	debugLogger  *log.Logger
	debugLogPath string
	debugLogOnce sync.Once

	// PacketDumpLen limits how many bytes of a packet payload DebugPacket
	// logs. A value of 0 dumps the entire payload.
	PacketDumpLen = 256
)

// Setup directs logs to dir. An empty dir keeps logs on the console only.
func Setup(dir string, debug bool) {
	mu.Lock()
	defer mu.Unlock()

	logDir = dir
	if logDir != "" {
		if err := os.MkdirAll(logDir, 0755); err != nil {
			log.Printf("could not create log directory: %v", err)
			logDir = ""
		}
	}
	ts := time.Now().Format("20060102-150405")

	errorLogPath = ""
	if logDir != "" {
		errorLogPath = filepath.Join(logDir, fmt.Sprintf("error-%s.log", ts))
	}
	errorLogOnce = sync.Once{}
	errorLogger = log.New(out, "", log.LstdFlags)
	log.SetOutput(errorLogger.Writer())

	setDebug(debug, ts)
}

// SetOutput replaces the console writer. Tests use it to capture logs.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
	if errorLogger != nil {
		errorLogger.SetOutput(w)
		log.SetOutput(w)
	}
	if debugLogger != nil {
		debugLogger.SetOutput(w)
	}
}

// SetDebug turns debug logging on or off.
func SetDebug(enabled bool) {
	mu.Lock()
	defer mu.Unlock()
	setDebug(enabled, time.Now().Format("20060102-150405"))
}

func setDebug(enabled bool, ts string) {
	if !enabled {
		debugLogger = nil
		return
	}
	debugLogPath = ""
	if logDir != "" {
		debugLogPath = filepath.Join(logDir, fmt.Sprintf("debug-%s.log", ts))
	}
	debugLogOnce = sync.Once{}
	debugLogger = log.New(out, "", log.LstdFlags)
}

// DebugEnabled reports whether Debugf writes anything.
func DebugEnabled() bool {
	mu.Lock()
	defer mu.Unlock()
	return debugLogger != nil
}

func openFile(l *log.Logger, path string) {
	if path == "" {
		return
	}
	if f, err := os.Create(path); err == nil {
		l.SetOutput(io.MultiWriter(out, f))
	}
}

func errorLog() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if errorLogger == nil {
		return nil
	}
	l, path := errorLogger, errorLogPath
	errorLogOnce.Do(func() { openFile(l, path) })
	return l
}

func debugLog() *log.Logger {
	mu.Lock()
	defer mu.Unlock()
	if debugLogger == nil {
		return nil
	}
	l, path := debugLogger, debugLogPath
	debugLogOnce.Do(func() { openFile(l, path) })
	return l
}

// Errorf logs an error.
func Errorf(format string, v ...any) {
	if l := errorLog(); l != nil {
		l.Printf(format, v...)
		return
	}
	log.Printf(format, v...)
}

// Warnf logs a warning.
func Warnf(format string, v ...any) {
	msg := fmt.Sprintf(format, v...)
	if l := errorLog(); l != nil {
		l.Printf("warning: %s", msg)
		return
	}
	log.Printf("warning: %s", msg)
}

// Debugf logs only when debug logging is enabled.
func Debugf(format string, v ...any) {
	if l := debugLog(); l != nil {
		l.Printf(format, v...)
	}
}

// DebugPacket hex dumps data, truncated to PacketDumpLen bytes.
func DebugPacket(prefix string, data []byte) {
	l := debugLog()
	if l == nil {
		return
	}
	n := len(data)
	dump := data
	if PacketDumpLen > 0 && n > PacketDumpLen {
		dump = data[:PacketDumpLen]
	}
	l.Printf("%s len=%d payload=% x", prefix, n, dump)
}
