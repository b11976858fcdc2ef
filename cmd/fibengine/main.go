// Command fibengine calculates Fibonacci numbers of arbitrary size using
// O(log n) algorithms, as a CLI tool or an HTTP API server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/agbru/fibengine/internal/app"
	apperrors "github.com/agbru/fibengine/internal/errors"
)

func main() {
	os.Exit(run())
}

// run builds and executes the application, returning its exit code. It is
// separated from main so deferred cleanup runs before os.Exit.
func run() int {
	// --version works in any position and bypasses configuration parsing.
	if app.HasVersionFlag(os.Args[1:]) {
		app.PrintVersion(os.Stdout)
		return apperrors.ExitSuccess
	}

	application, err := app.New(os.Args, os.Stderr)
	if err != nil {
		if app.IsHelpError(err) {
			return apperrors.ExitSuccess
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return apperrors.ExitErrorConfig
	}

	return application.Run(context.Background(), os.Stdout)
}
