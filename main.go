package main

import "github.com/modehaus/stylesynth/cmd"

func main() {
	cmd.Execute()
}
