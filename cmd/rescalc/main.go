package main

import "github.com/dgallion1/rescalc/cmd/rescalc/cmd"

func main() {
	cmd.Execute()
}
