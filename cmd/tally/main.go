package main

import "tally/internal/cli"

func main() {
	cli.Execute()
}
