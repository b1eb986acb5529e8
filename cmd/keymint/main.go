package main

import "github.com/keymint-io/keymint/cmd"

func main() {
	cmd.Execute()
}
