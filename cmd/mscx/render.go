package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"

	"mscx/internal/batch"
	"mscx/internal/rename"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiCyan   = "\x1b[36m"
)

const (
	statusLabelWidth = 20
	statusIndent     = "  "
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	statusText := statusKindLabel(kind)
	if message != "" {
		statusText = fmt.Sprintf("[%s] %s", statusText, message)
	} else {
		statusText = fmt.Sprintf("[%s]", statusText)
	}
	base := fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", statusText)
	return paint(base, statusKindColor(kind), colorize)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "OK"
	case statusWarn:
		return "WARN"
	case statusError:
		return "ERROR"
	default:
		return "INFO"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	case statusInfo:
		return ansiBlue
	default:
		return ""
	}
}

func paint(s, color string, colorize bool) string {
	if !colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

// colorizeDiff paints added and removed lines of a unified diff.
func colorizeDiff(diff string, colorize bool) string {
	if !colorize {
		return diff
	}
	lines := strings.SplitAfter(diff, "\n")
	var b strings.Builder
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(paint(line, ansiBlue, true))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(paint(line, ansiCyan, true))
		case strings.HasPrefix(line, "+"):
			b.WriteString(paint(line, ansiGreen, true))
		case strings.HasPrefix(line, "-"):
			b.WriteString(paint(line, ansiRed, true))
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

func renameStatusKind(status rename.Status) statusKind {
	switch status {
	case rename.StatusRenamed:
		return statusOK
	case rename.StatusSkipped, rename.StatusAlreadyPresent:
		return statusWarn
	default:
		return statusInfo
	}
}

func printFileResult(w io.Writer, result batch.FileResult, colorize bool) {
	fmt.Fprintln(w, paint(result.Path, ansiBlue, colorize))
	for _, change := range result.Changes {
		fmt.Fprintf(w, "%s%s: %s -> %s\n", statusIndent, change.Field, strconv.Quote(change.Old), strconv.Quote(change.New))
	}
	if result.Backup != "" {
		fmt.Fprintln(w, renderStatusLine("backup", statusInfo, result.Backup, colorize))
	}
	if result.ExportPath != "" {
		fmt.Fprintln(w, renderStatusLine("export", statusOK, result.ExportPath, colorize))
	}
	if result.Diff != "" {
		fmt.Fprint(w, colorizeDiff(result.Diff, colorize))
	}
	if r := result.Rename; r != nil {
		message := r.Destination
		if r.Status == rename.StatusSkipped {
			message = "empty: " + strings.Join(r.Missing, ", ")
		}
		fmt.Fprintln(w, renderStatusLine(string(r.Status), renameStatusKind(r.Status), message, colorize))
	}
	if result.Err != nil {
		fmt.Fprintln(w, renderStatusLine("error", statusError, result.Err.Error(), colorize))
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
