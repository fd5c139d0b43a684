package updater

import (
	"fmt"
	"html"
	"strings"
)

func FormatReleaseMessageHTML(r Result) string {
	unit := "episode"
	if r.Source.IsReadable() {
		unit = "chapter"
	}
	n := r.NewReleases()
	if n != 1 {
		unit += "s"
	}

	var b strings.Builder
	b.WriteString("📢 <b>New Release Alert!</b>\n\n")
	b.WriteString(fmt.Sprintf("<b>%s</b> (%s) has <b>%d</b> new %s.\n", html.EscapeString(r.Title), html.EscapeString(string(r.Source)), n, unit))
	b.WriteString(fmt.Sprintf("Total is now <b>%d</b>.\n", r.CurrentTotal))
	b.WriteString("\nUse /list to update your progress.")
	return b.String()
}
