package main

import "copyjob/cmd"

func main() {
	cmd.Execute()
}
