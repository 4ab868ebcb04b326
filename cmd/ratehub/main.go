package main

import "freight-rate-hub/internal/cli"

func main() {
	cli.Execute()
}
