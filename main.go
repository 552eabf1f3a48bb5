package main

import "github.com/kimm528/ringfitmanager/api"

func main() {
	api.MainLoop()
}
