package main

import (
	"os"
	"simplereminder/internal/interfaces/cli"

	_ "github.com/joho/godotenv/autoload" // Automatically load .env file
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
