package main

import (
	"fmt"
	"os"

	"github.com/okian/climarisk/internal/riskctl"
)

func main() {
	if err := riskctl.NewRootCommand(os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "riskctl:", err)
		os.Exit(1)
	}
}
