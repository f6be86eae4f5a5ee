package main

import "eventky/cmd/client/cmd"

func main() {
	cmd.Execute()
}
