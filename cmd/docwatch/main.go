// Package main is the entry point for the docwatch binary.
package main

import "github.com/mintoswatch/docwatch/cmd"

func main() {
	cmd.Execute()
}
