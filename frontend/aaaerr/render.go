package aaaerr

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

var (
	positionStyle = pterm.NewStyle(pterm.FgCyan)
	countStyle    = pterm.NewStyle(pterm.FgRed, pterm.Bold)
)

// Render writes every collected error to w, each prefixed with its
// source position, followed by a total count. Errors spanning several
// positions carry the extra positions in their own message body.
func Render(w io.Writer, errs *Errors) {
	for _, err := range errs.Errors() {
		fmt.Fprintf(w, "%s: %s\n", positionStyle.Sprint(err.Pos()), err.Error())
	}
	switch n := errs.Len(); n {
	case 0:
	case 1:
		fmt.Fprintln(w, countStyle.Sprint("Found 1 error"))
	default:
		fmt.Fprintln(w, countStyle.Sprintf("Found %d errors", n))
	}
}
