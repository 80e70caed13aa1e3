package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/finvix/finvix/internal/api"
)

var version = "dev"

func main() {
	if err := rootCmd.Execute(); err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			printError("%s", apiErr.Remediation())
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}
