package main

import (
	"github.com/rkhozinov/php-config-transofrmer/cmd"
)

var (
	Version   string
	BuildTime string
)

func main() {
	cmd.SetVersion(Version)
	cmd.Execute()
}
