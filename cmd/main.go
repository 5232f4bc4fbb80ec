package main

import (
	"os"

	"github.com/lewnelson/foreign-exchange-api/internal/app"
)

func main() {
	if err := app.Run(); err != nil {
		os.Exit(1)
	}
}
