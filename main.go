package main

import (
	"errors"
	"os"

	"github.com/hweijer/tapplan/cmd"
	"github.com/hweijer/tapplan/config"
)

// Exit codes: 0 on success, 1 on a generic failure, 2 when the
// configuration itself is broken.
const (
	exitFailure       = 1
	exitMisconfigured = 2
)

func main() {
	if err := cmd.Execute(); err != nil {
		var cfgErr *config.Error
		if errors.As(err, &cfgErr) {
			os.Exit(exitMisconfigured)
		}
		os.Exit(exitFailure)
	}
}
