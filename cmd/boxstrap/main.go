package main

import "github.com/mpetrov/boxstrap/internal/cli"

func main() {
	cli.Execute()
}
