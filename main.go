package main

import "gramsetu-be/cmd"

func main() {
	cmd.Execute()
}
