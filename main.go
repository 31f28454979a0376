package main

import "github.com/maxvaer/hostprobe/cmd"

func main() {
	cmd.Execute()
}
