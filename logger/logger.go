package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	AppLogger   *log.Logger
	ErrorLogger *log.Logger

	mu          sync.RWMutex
	logLevel    = levelInfo
	appLogFile  *os.File
	appLogPath  string
	initialized bool
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
	levelError
)

func parseLevel(s string) level {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return levelDebug
	case "WARN", "WARNING":
		return levelWarn
	case "ERROR":
		return levelError
	default:
		return levelInfo
	}
}

func (l level) String() string {
	switch l {
	case levelDebug:
		return "DEBUG"
	case levelWarn:
		return "WARN"
	case levelError:
		return "ERROR"
	default:
		return "INFO"
	}
}

// InitGlobalLoggers opens the app log file and sets the level. Errors always
// go to stderr as well. An empty path discards app output.
func InitGlobalLoggers(path, lvl string) error {
	mu.Lock()
	defer mu.Unlock()

	newLevel := parseLevel(lvl)
	if initialized && appLogPath == path && newLevel == logLevel {
		return nil
	}
	if appLogFile != nil {
		appLogFile.Close()
		appLogFile = nil
	}
	logLevel = newLevel
	appLogPath = path

	ErrorLogger = log.New(os.Stderr, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)

	var appLogWriter io.Writer = io.Discard
	actualPath := "(discarded)"
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
			ErrorLogger.Printf("Failed to create app log directory %s: %v. App logs will be discarded.", filepath.Dir(path), err)
		} else if f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0640); err != nil {
			ErrorLogger.Printf("Failed to open app log file %s: %v. App logs will be discarded.", path, err)
		} else {
			appLogFile = f
			appLogWriter = f
			actualPath = path
		}
	}
	AppLogger = log.New(appLogWriter, "APP: ", log.Ldate|log.Ltime|log.Lshortfile)

	if !initialized {
		AppLogger.Printf("App logger initialized. Log level: %s. Output file: %s", logLevel, actualPath)
	}
	initialized = true
	return nil
}

// SetOutput redirects app output to w, mainly for tests.
func SetOutput(w io.Writer, lvl string) {
	mu.Lock()
	defer mu.Unlock()
	logLevel = parseLevel(lvl)
	AppLogger = log.New(w, "APP: ", 0)
	ErrorLogger = log.New(w, "ERROR: ", 0)
	initialized = true
}

func enabled(l level) bool {
	mu.RLock()
	defer mu.RUnlock()
	return AppLogger != nil && l >= logLevel
}

func Info(format string, v ...interface{}) {
	if enabled(levelInfo) {
		AppLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Debug(format string, v ...interface{}) {
	if enabled(levelDebug) {
		AppLogger.Output(2, fmt.Sprintf(format, v...))
	}
}

func Warn(format string, v ...interface{}) {
	if enabled(levelWarn) {
		AppLogger.Output(2, "WARN: "+fmt.Sprintf(format, v...))
	}
}

func Error(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	mu.RLock()
	defer mu.RUnlock()
	if ErrorLogger != nil {
		ErrorLogger.Output(2, message)
	}
	if AppLogger != nil && appLogFile != nil {
		AppLogger.Output(2, message)
	}
}

func Fatal(format string, v ...interface{}) {
	message := fmt.Sprintf(format, v...)
	if ErrorLogger != nil {
		ErrorLogger.Fatal(message)
	}
	log.Fatal(message)
}

func CloseLogFiles() {
	mu.Lock()
	defer mu.Unlock()
	if appLogFile != nil {
		AppLogger.Println("Closing app log file.")
		appLogFile.Close()
		appLogFile = nil
		AppLogger.SetOutput(io.Discard)
	}
	initialized = false
}
