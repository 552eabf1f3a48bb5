package main

import "github.com/kimm528/ringfitmanager/cmd/ringctl/command"

func main() {
	command.Execute()
}
