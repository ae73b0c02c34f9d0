package main

import "neoncv/internal/cli"

func main() {
	cli.Execute()
}
