package main

import (
	"fmt"
	"os"

	"github.com/crgimenes/wry/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Execute(version, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "wryctl:", err)
		os.Exit(1)
	}
}
