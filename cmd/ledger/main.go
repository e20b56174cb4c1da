package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"household-ledger/internal/commands"
)

func main() {
	_ = godotenv.Load()

	if err := commands.NewRootCommand().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
