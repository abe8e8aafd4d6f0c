package main

import "featops/internal/cli"

func main() {
	cli.Execute()
}
