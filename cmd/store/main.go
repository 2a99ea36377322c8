package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"storefront/cli"
)

func main() {
	// optional .env for STORE_* variables; missing file is fine
	_ = godotenv.Load()

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
