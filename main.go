package main

import "ts-fixer/cmd"

func main() {
	cmd.Execute()
}
