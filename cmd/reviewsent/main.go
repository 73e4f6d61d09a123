package main

import (
	"fmt"
	"os"

	"github.com/godilite/reviewsent/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env")

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "reviewsent: %v\n", err)
		os.Exit(app.ExitCode(err))
	}
}
