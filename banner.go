package libship

import (
	"io"
	"strings"

	"github.com/fatih/color"
)

// Banner displays the Libship ASCII art logo
func Banner(w io.Writer) {
	teal := color.RGB(44, 130, 142)
	grey := color.New(color.FgHiBlack)

	teal.Fprint(w, strings.TrimLeft(`
 _  _ _         _    _
| |(_) |__  ___| |_ (_)_ __
| || | '_ \(_-<| ' \| | '_ \
|_||_|_.__//__/|_||_|_| .__/
                      |_|
`, "\n"))
	grey.Fprint(w, `
Libship - Release automation for Arduino libraries.
https://github.com/libship/libship

`)
}
