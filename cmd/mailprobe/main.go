package main

import "mailprobe/internal/cli"

func main() {
	cli.Execute()
}
