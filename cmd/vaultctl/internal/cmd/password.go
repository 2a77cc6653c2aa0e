package cmd

import (
	"fmt"
	"os"

	"golang.org/x/term"
)

// promptPassword reads a password from the terminal without echoing it.
// The core library never prompts for passwords itself; only this CLI
// shell does.
func promptPassword(label string) ([]byte, error) {
	fmt.Printf("%s: ", label)
	password, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return nil, err
	}
	return password, nil
}
