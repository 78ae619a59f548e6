package main

import (
	"ipamd/internal/app"

	"github.com/charmbracelet/log"
)

func main() {
	if err := app.Run(); err != nil {
		log.Fatal("ipamd exited", "error", err)
	}
}
