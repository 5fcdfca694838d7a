package main

import "brainmap/cmd"

func main() {
	cmd.Execute()
}
