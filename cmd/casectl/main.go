package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

func main() {
	// A .env file is optional for the CLI.
	_ = godotenv.Load()
	cmd := newRootCmd(viper.New())
	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, userFacing(err))
		os.Exit(1)
	}
}
