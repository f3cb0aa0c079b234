package ui

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// PromptInput reads one line of input. Returns def when the user just
// presses enter.
func PromptInput(prompt, def string) string {
	if def != "" {
		fmt.Printf("%s %s: ", StyleValue.Render(prompt), StyleMeta.Render("["+def+"]"))
	} else {
		fmt.Printf("%s: ", StyleValue.Render(prompt))
	}
	reader := bufio.NewReader(os.Stdin)
	line, _ := reader.ReadString('\n')
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}
