// Package main is the entry point for the tcrun CLI.
package main

import "tcrun.dev/pkg/tcrun/cmd"

func main() {
	cmd.Execute()
}
