package main

import "github.com/rohanjain3/AGRISMART-12/cmd/agrismart/commands"

func main() {
	commands.Execute()
}
