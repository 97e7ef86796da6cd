// Package main is the entry point for the clara-repl shell, an interactive
// front end for the clara-evaluate bridge.
package main

func main() {
	Execute()
}
