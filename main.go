package main

import "github.com/echo-support/echo-cli/cmd"

func main() {
	cmd.Execute()
}
