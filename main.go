package main

import "github.com/KaramelBytes/ridestats-cli/cmd"

func main() {
	cmd.Execute()
}
