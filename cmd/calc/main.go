package main

import "calc/cmd/calc/cmd"

func main() {
	cmd.Execute()
}
