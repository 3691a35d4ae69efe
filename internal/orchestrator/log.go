package orchestrator

import (
	"fmt"
	"os"
	"time"
)

// NewFileLogger returns a Logf that writes timestamped lines to stdout
// and appends them to the log file at path. If the file cannot be
// opened, logging degrades to stdout only.
func NewFileLogger(path string) func(format string, args ...any) {
	return func(format string, args ...any) {
		line := fmt.Sprintf("[%s] %s", time.Now().Format("2006-01-02 15:04:05"), fmt.Sprintf(format, args...))
		fmt.Println(line)

		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return
		}
		fmt.Fprintln(f, line)
		f.Close()
	}
}
