package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Constants for output formatting.
const (
	DefaultTopK = 10 // Default number of ranked rows

	PaperNameMaxLen = 60 // Used in ranking tables
	PreviewMaxLen   = 600
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "error: %s\n", msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	_ = logger.Sync()
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// UpdateResponse is the response for config set commands.
type UpdateResponse struct {
	Status string `json:"status"`
	Key    string `json:"key"`
	Value  string `json:"value"`
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// collapseWhitespace joins the fields of s with single spaces.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// printProgress prints a progress bar to stderr.
func printProgress(current, total int) {
	if total == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "\r%s", progressLine(current, total))
}

// clearProgress erases the progress bar line.
func clearProgress() {
	fmt.Fprintf(os.Stderr, "\r%s\r", strings.Repeat(" ", 50))
}

func progressLine(current, total int) string {
	pct := float64(current) / float64(total) * 100
	barWidth := 30
	filled := int(float64(barWidth) * float64(current) / float64(total))
	var bar strings.Builder
	for i := 0; i < barWidth; i++ {
		switch {
		case i < filled:
			bar.WriteByte('=')
		case i == filled:
			bar.WriteByte('>')
		default:
			bar.WriteByte(' ')
		}
	}
	return fmt.Sprintf("[%s] %d/%d (%.0f%%)", bar.String(), current, total, pct)
}

// formatDuration formats a duration in a human-readable way.
func formatDuration(d time.Duration) string {
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	seconds := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm %ds", minutes, seconds)
}

// formatBytes formats bytes in a human-readable way.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
