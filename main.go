package main

import "github.com/dk9977/maskedminers/cmd"

func main() {
	cmd.Execute()
}
