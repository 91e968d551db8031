package telemetry

import (
	"fmt"
	"io"
	"time"

	"github.com/robinvdvleuten/beancount-validate/output"
)

// slowThreshold marks timings that are highlighted in styled reports.
const slowThreshold = 100 * time.Millisecond

// formatTimingTree writes a timer and its children:
//
//	validate main.beancount: 125ms
//	├─ parser.lex: 20ms
//	├─ parser.parse: 45ms
//	└─ validation: 60ms
//	   ├─ dates: 1ms
//	   └─ balance_assertions: 42ms
func formatTimingTree(w io.Writer, root *timerNode, styles *output.Styles) {
	timing := formatDuration(root.end.Sub(root.start))
	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s: %s\n", styles.Keyword(root.name), timing)
	} else {
		_, _ = fmt.Fprintf(w, "%s: %s\n", root.name, timing)
	}

	for i, child := range root.children {
		formatNode(w, child, "", i == len(root.children)-1, styles)
	}
}

func formatNode(w io.Writer, node *timerNode, prefix string, isLast bool, styles *output.Styles) {
	duration := node.end.Sub(node.start)

	branch, extension := "├─ ", "│  "
	if isLast {
		branch, extension = "└─ ", "   "
	}

	timing := formatDuration(duration)
	if styles != nil {
		_, _ = fmt.Fprintf(w, "%s%s: %s\n", styles.Dim(prefix+branch), node.name, styles.Timing(timing, duration >= slowThreshold))
	} else {
		_, _ = fmt.Fprintf(w, "%s%s%s: %s\n", prefix, branch, node.name, timing)
	}

	for i, child := range node.children {
		formatNode(w, child, prefix+extension, i == len(node.children)-1, styles)
	}
}

// formatDuration shows milliseconds below one second, seconds above.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%.0fms", float64(d)/float64(time.Millisecond))
	}
	return fmt.Sprintf("%.2fs", float64(d)/float64(time.Second))
}
