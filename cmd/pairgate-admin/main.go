package main

import "github.com/turtacn/pairgate/cmd/cli"

func main() {
	cli.Execute()
}
