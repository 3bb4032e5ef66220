package main

import (
	"log"

	"github.com/calyxa/galerie/cmd"
	"github.com/calyxa/galerie/config"
)

func main() {
	log.Printf("galerie %s (%s)", config.Version, config.CommitHash)
	cmd.Execute()
}
