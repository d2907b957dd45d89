package main

import (
	"github.com/joho/godotenv"

	"ragchat/cmd/ragchat/commands"
)

func main() {
	// Optional .env for API keys; absence is fine.
	_ = godotenv.Load()
	commands.Execute()
}
