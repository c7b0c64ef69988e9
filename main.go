package main

import "github.com/brk3/habitcal/cmd"

func main() {
	cmd.Execute()
}
