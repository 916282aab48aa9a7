package main

import "rigup/internal/cli"

func main() {
	cli.Execute()
}
