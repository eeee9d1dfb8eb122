package main

import (
	"fmt"
	"os"

	"github.com/simone-trubian/medscribe/internal/cli"
)

func main() {
	if err := cli.NewRoot().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "medscribe:", err)
		os.Exit(1)
	}
}
