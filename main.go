package main

import "k2age/cmd"

func main() {
	cmd.Execute()
}
