package display

import (
	_ "embed"
	"os"
	"strings"

	"github.com/charmbracelet/x/term"
)

//go:embed banner.txt
var bannerRaw string

// RenderBanner returns the banner centred for the current terminal.
func RenderBanner() string {
	return centerBanner(bannerRaw, termWidth())
}

func centerBanner(art string, width int) string {
	lines := strings.Split(strings.TrimRight(art, "\n"), "\n")
	widest := 0
	for _, l := range lines {
		widest = max(widest, len(l))
	}
	pad := ""
	if width > widest {
		pad = strings.Repeat(" ", (width-widest)/2)
	}

	var b strings.Builder
	for _, l := range lines {
		b.WriteString(pad)
		b.WriteString(BannerStyle.Render(l))
		b.WriteByte('\n')
	}
	return b.String()
}

// termWidth returns the terminal width, or 80 when stdout is not a terminal.
func termWidth() int {
	if w, _, err := term.GetSize(os.Stdout.Fd()); err == nil && w > 0 {
		return w
	}
	return 80
}
