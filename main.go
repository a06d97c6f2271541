package main

import "github.com/jmehdipour/user-send/cmd"

func main() {
	cmd.Execute()
}
