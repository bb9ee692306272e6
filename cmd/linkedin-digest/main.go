package main

import (
	"linkedin-digest/cmd/linkedin-digest/commands"
)

func main() {
	commands.Execute()
}
