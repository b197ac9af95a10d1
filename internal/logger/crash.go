// Package logger provides structured logging setup and crash recovery
// for tasklist.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"time"
)

const (
	// CrashLogDir is the directory for crash logs relative to the base path.
	CrashLogDir = "crash_logs"

	// MaxCrashLogs is the maximum number of crash logs to keep.
	MaxCrashLogs = 10
)

// CrashContext stores what was happening when a panic hit.
type CrashContext struct {
	mu        sync.RWMutex
	lastInput string
	command   string
	storage   string
	version   string
	basePath  string
}

var globalContext = &CrashContext{}

// exit is swapped in tests.
var exit = os.Exit

// crashOut receives the user-facing crash banner.
var crashOut io.Writer = os.Stderr

// SetBasePath sets the directory crash logs are written under.
func SetBasePath(path string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.basePath = path
}

// SetVersion sets the application version for crash logs.
func SetVersion(version string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.version = version
}

// SetCommand sets the current command being executed.
func SetCommand(cmd string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.command = cmd
}

// SetStorage records the active storage driver.
func SetStorage(driver string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.storage = driver
}

// SetLastInput records the last user input (task text, key press).
func SetLastInput(input string) {
	globalContext.mu.Lock()
	defer globalContext.mu.Unlock()
	globalContext.lastInput = truncateForLog(strings.TrimSpace(input), 500)
}

func truncateForLog(value string, maxLen int) string {
	if len(value) <= maxLen {
		return value
	}
	return value[:maxLen] + "... [truncated]"
}

// CrashLog represents a crash log entry.
type CrashLog struct {
	Timestamp  time.Time
	Version    string
	Command    string
	Storage    string
	PanicValue string
	StackTrace string
	LastInput  string
	GoVersion  string
	OS         string
	Arch       string
}

// HandlePanic recovers a panic, writes a crash log and exits with status 1.
// Usage: defer logger.HandlePanic()
func HandlePanic() {
	r := recover()
	if r == nil {
		return
	}

	log := createCrashLog(r)
	path, err := writeCrashLog(log)
	if err != nil {
		fmt.Fprintf(crashOut, "\n[CRASH] Failed to write crash log: %v\n", err)
		fmt.Fprintf(crashOut, "[CRASH] Panic: %v\n%s\n", r, log.StackTrace)
	} else {
		fmt.Fprintf(crashOut, "\ntasklist hit an unexpected error.\n")
		fmt.Fprintf(crashOut, "A crash log has been saved to:\n  %s\n\n", path)
		fmt.Fprintf(crashOut, "Your tasks are safe: the last saved list is still on disk.\n")
	}
	exit(1)
}

func createCrashLog(panicValue any) CrashLog {
	globalContext.mu.RLock()
	defer globalContext.mu.RUnlock()

	return CrashLog{
		Timestamp:  time.Now(),
		Version:    globalContext.version,
		Command:    globalContext.command,
		Storage:    globalContext.storage,
		PanicValue: fmt.Sprintf("%v", panicValue),
		StackTrace: string(debug.Stack()),
		LastInput:  globalContext.lastInput,
		GoVersion:  runtime.Version(),
		OS:         runtime.GOOS,
		Arch:       runtime.GOARCH,
	}
}

func writeCrashLog(log CrashLog) (string, error) {
	dir := crashLogDir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("create crash log dir: %w", err)
	}

	if err := cleanOldCrashLogs(dir, MaxCrashLogs-1); err != nil {
		fmt.Fprintf(crashOut, "[WARN] Failed to clean old crash logs: %v\n", err)
	}

	path := filepath.Join(dir, crashLogName(log.Timestamp))
	if err := os.WriteFile(path, []byte(formatCrashLog(log)), 0644); err != nil {
		return "", fmt.Errorf("write crash log: %w", err)
	}
	return path, nil
}

func crashLogDir() string {
	globalContext.mu.RLock()
	basePath := globalContext.basePath
	globalContext.mu.RUnlock()

	if basePath == "" {
		basePath = ".tasklist"
	}
	return filepath.Join(basePath, CrashLogDir)
}

func crashLogName(t time.Time) string {
	return fmt.Sprintf("crash_%s.log", t.Format("20060102_150405"))
}

func formatCrashLog(log CrashLog) string {
	rule := strings.Repeat("=", 80)
	thin := strings.Repeat("-", 80)

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\nTASKLIST CRASH LOG\n%s\n\n", rule, rule)
	fmt.Fprintf(&sb, "Timestamp: %s\n", log.Timestamp.Format(time.RFC3339))
	fmt.Fprintf(&sb, "Version:   %s\n", log.Version)
	fmt.Fprintf(&sb, "Command:   %s\n", log.Command)
	fmt.Fprintf(&sb, "Storage:   %s\n", log.Storage)
	fmt.Fprintf(&sb, "Go:        %s\n", log.GoVersion)
	fmt.Fprintf(&sb, "OS/Arch:   %s/%s\n", log.OS, log.Arch)

	section := func(title, body string) {
		fmt.Fprintf(&sb, "\n%s\n%s\n%s\n%s", thin, title, thin, body)
		if !strings.HasSuffix(body, "\n") {
			sb.WriteString("\n")
		}
	}
	section("PANIC VALUE", log.PanicValue)
	section("STACK TRACE", log.StackTrace)
	if log.LastInput != "" {
		section("LAST USER INPUT", log.LastInput)
	}

	fmt.Fprintf(&sb, "\n%s\nEND OF CRASH LOG\n%s\n", rule, rule)
	return sb.String()
}

// cleanOldCrashLogs keeps at most keep crash logs, removing the oldest.
func cleanOldCrashLogs(dir string, keep int) error {
	logs, err := listCrashLogs(dir)
	if err != nil || len(logs) <= keep {
		return err
	}
	// os.ReadDir sorts by name and names embed the timestamp.
	for _, path := range logs[:len(logs)-keep] {
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("remove old crash log %s: %w", filepath.Base(path), err)
		}
	}
	return nil
}

// ListCrashLogs returns the crash logs under the configured base path,
// oldest first.
func ListCrashLogs() ([]string, error) {
	return listCrashLogs(crashLogDir())
}

func listCrashLogs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var logs []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasPrefix(e.Name(), "crash_") && strings.HasSuffix(e.Name(), ".log") {
			logs = append(logs, filepath.Join(dir, e.Name()))
		}
	}
	return logs, nil
}
