package main

import (
	"os"

	"github.com/rileyhilliard/hostdeck/internal/cli"
	"github.com/rileyhilliard/hostdeck/internal/errors"
)

// Version info set via ldflags at build time:
//
//	go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123 -X main.date=2024-01-01"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	if err := cli.Execute(); err != nil {
		if code, ok := errors.GetExitCode(err); ok {
			os.Exit(code)
		}
		os.Exit(1)
	}
}
