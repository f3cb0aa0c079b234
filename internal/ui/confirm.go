package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

func readYes() bool {
	line, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	line = strings.TrimSpace(strings.ToLower(line))
	return line == "y" || line == "yes"
}

// Confirm prompts the user with a yes/no question. Returns true for yes.
func Confirm(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleWarning.Render(prompt))
	return readYes()
}

// ConfirmDanger is like Confirm but styled with the error color, for
// destructive actions like revoking approvals or removing wallets.
func ConfirmDanger(prompt string) bool {
	fmt.Printf("%s [y/N]: ", StyleError.Render("⚠ "+prompt))
	return readYes()
}
