// Package notify provides formatted CLI notifications with type-specific
// symbols and colors.
package notify

import (
	"fmt"
	"io"
	"os"
	"strings"

	fcolor "github.com/fatih/color"
)

// MessageType defines the type of notification message.
type MessageType int

// Message type constants. Each type determines the message styling (color
// and symbol).
const (
	// ErrorType represents an error message (red, with ✗ symbol).
	ErrorType MessageType = iota
	// WarningType represents a warning message (yellow, with ⚠ symbol).
	WarningType
	// ActivityType represents an activity/progress message (default color, with ► symbol).
	ActivityType
	// SuccessType represents a success message (green, with ✔ symbol).
	SuccessType
	// InfoType represents an informational message (blue, with ℹ symbol).
	InfoType
)

// Message represents a notification message to be displayed to the user.
type Message struct {
	// Type determines the message styling (color, symbol).
	Type MessageType
	// Content is the main message text to display.
	Content string
	// Writer is the output destination. If nil, defaults to os.Stdout.
	Writer io.Writer
	// Args are format arguments for Content if it contains format specifiers.
	Args []any
}

// Errorf writes an error message to the writer.
func Errorf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ErrorType, Content: format, Args: args, Writer: writer})
}

// Warningf writes a warning message to the writer.
func Warningf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: WarningType, Content: format, Args: args, Writer: writer})
}

// Activityf writes an activity/progress message to the writer.
func Activityf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: ActivityType, Content: format, Args: args, Writer: writer})
}

// Successf writes a success message to the writer.
func Successf(writer io.Writer, format string, args ...any) {
	WriteMessage(Message{Type: SuccessType, Content: format, Args: args, Writer: writer})
}

// WriteMessage formats and writes the message with its symbol and color.
func WriteMessage(msg Message) {
	writer := msg.Writer
	if writer == nil {
		writer = os.Stdout
	}

	content := msg.Content
	if len(msg.Args) > 0 {
		content = fmt.Sprintf(msg.Content, msg.Args...)
	}

	content = strings.TrimRight(content, "\n")

	symbol, colorize := styleFor(msg.Type)

	_, _ = fmt.Fprintf(writer, "%s %s\n", colorize(symbol), content)
}

func styleFor(messageType MessageType) (string, func(...any) string) {
	switch messageType {
	case ErrorType:
		return "✗", fcolor.New(fcolor.FgRed).Sprint
	case WarningType:
		return "⚠", fcolor.New(fcolor.FgYellow).Sprint
	case ActivityType:
		return "►", fmt.Sprint
	case SuccessType:
		return "✔", fcolor.New(fcolor.FgGreen).Sprint
	case InfoType:
		return "ℹ", fcolor.New(fcolor.FgBlue).Sprint
	default:
		return "•", fmt.Sprint
	}
}
