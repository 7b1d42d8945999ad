package main

import "github.com/Dicklesworthstone/cpumon/internal/cli"

func main() {
	cli.Execute()
}
