package main

import (
	"github.com/Tripper99/DJs-KB-maskin/cmd"
)

// version will be set by goreleaser during build
var version = "dev"

func main() {
	cmd.SetVersion(version)
	cmd.Execute()
}
