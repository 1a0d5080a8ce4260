package log

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/apex/log"
)

// InitLogger sets up Apex with a custom handler and a log level from the
// EECTL_LOG env variable.
func InitLogger() {
	level := strings.ToUpper(os.Getenv("EECTL_LOG"))
	if level == "" {
		level = "ERROR"
	}
	log.SetHandler(&CustomHandler{})
	log.SetLevelFromString(level)
}

// CustomHandler formats log messages and writes to stderr so findings output
// on stdout stays machine-parseable.
type CustomHandler struct{}

// HandleLog implements the log.Handler interface
func (h *CustomHandler) HandleLog(e *log.Entry) error {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	level := strings.ToUpper(e.Level.String())
	fmt.Fprintf(os.Stderr, "%s %.1s %s\n", timestamp, level, e.Message)
	return nil
}
