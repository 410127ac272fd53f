package tui

import (
        "strings"

        xansi "github.com/charmbracelet/x/ansi"
)

// fitBlock forces s to exactly width columns (ANSI-aware) and height lines, so joined
// panes and overlays land on the cells the hit tests expect.
func fitBlock(s string, width, height int) string {
        width = max(width, 0)
        height = max(height, 0)

        lines := strings.Split(s, "\n")
        if height > 0 {
                if len(lines) > height {
                        lines = lines[:height]
                }
                for len(lines) < height {
                        lines = append(lines, "")
                }
        }
        for i, ln := range lines {
                lines[i] = fitLine(ln, width)
        }
        return strings.Join(lines, "\n")
}

func fitLine(ln string, width int) string {
        if width <= 0 {
                return ""
        }
        w := xansi.StringWidth(ln)
        if w > width {
                if width == 1 {
                        return xansi.Truncate(ln, 1, "")
                }
                ln = xansi.Truncate(ln, width, "…")
                w = xansi.StringWidth(ln)
        }
        if w < width {
                ln += strings.Repeat(" ", width-w)
        }
        return ln
}

// overlayAt paints fg over bg with fg's top-left corner at (x, y). Both are treated as
// blocks of lines; bg cells under fg are replaced.
func overlayAt(bg, fg string, x, y int) string {
        bgLines := strings.Split(bg, "\n")
        for i, fl := range strings.Split(fg, "\n") {
                row := y + i
                if row < 0 || row >= len(bgLines) {
                        continue
                }
                base := bgLines[row]
                fw := xansi.StringWidth(fl)
                left := xansi.Truncate(base, x, "")
                if pad := x - xansi.StringWidth(left); pad > 0 {
                        left += strings.Repeat(" ", pad)
                }
                right := xansi.TruncateLeft(base, x+fw, "")
                bgLines[row] = left + fl + right
        }
        return strings.Join(bgLines, "\n")
}
