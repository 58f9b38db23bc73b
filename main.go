package main

import (
	"os"

	"github.com/masingita/countrybot/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
