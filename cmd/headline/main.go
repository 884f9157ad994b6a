package main

import "github.com/emrgen/headline/cmd"

func main() {
	cmd.Execute()
}
