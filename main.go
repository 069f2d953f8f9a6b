// Package main is the entry point for the feedview application.
package main

import (
	"github.com/feedview/feedview/cmd"
	"github.com/feedview/feedview/config"
	"github.com/feedview/feedview/log"
	"github.com/samber/lo"
)

func main() {
	lo.Must0(config.Setup())
	lo.Must0(log.Setup())

	cmd.Execute()
}
