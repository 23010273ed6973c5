package main

import "threadhub/cmd/cli/command"

func main() {
	command.Execute()
}
