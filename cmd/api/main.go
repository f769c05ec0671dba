package main

import (
	_ "github.com/joho/godotenv/autoload"
)

// @title Agenda API
// @version 1.0
// @BasePath /
func main() {
	Execute()
}
