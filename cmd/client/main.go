package main

import "pixelvault/cmd/client/cmd"

func main() {
	cmd.Execute()
}
