package tools

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

const maxDiffPreviewLines = 40

// diffPreview renders a compact line diff between two file states for
// confirmation dialogs. Unchanged runs collapse to a marker so the
// operator sees only what the call would change.
func diffPreview(before, after string) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []string
	for _, d := range diffs {
		text := strings.TrimSuffix(d.Text, "\n")
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			for _, line := range strings.Split(text, "\n") {
				out = append(out, "- "+line)
			}
		case diffmatchpatch.DiffInsert:
			for _, line := range strings.Split(text, "\n") {
				out = append(out, "+ "+line)
			}
		case diffmatchpatch.DiffEqual:
			if text != "" {
				out = append(out, "  ...")
			}
		}
	}

	if len(out) > maxDiffPreviewLines {
		out = append(out[:maxDiffPreviewLines], "  ... [diff truncated]")
	}
	return strings.Join(out, "\n")
}
