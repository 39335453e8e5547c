package ui

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// ConfirmDanger writes a yes/no question for a destructive action to out,
// styled with the error color, and reads the answer from in. Anything but
// y or yes is a no.
func ConfirmDanger(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return readYes(in)
}

func readYes(in io.Reader) bool {
	line, _ := bufio.NewReader(in).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}
