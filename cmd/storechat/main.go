package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/nianverse/storechat/internal/cli"
)

func main() {
	// Optional .env in the working directory, for credentials like
	// STORECHAT_UPLOAD_AUTH_TOKEN during development.
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
