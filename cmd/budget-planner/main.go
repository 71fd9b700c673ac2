// Package main is the entry point for the budget-planner CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/budget-planner/cmd/budget-planner/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
