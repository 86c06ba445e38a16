// Command stormchat is a terminal chat and upload client for a streamed
// completions server.
package main

import "github.com/diogo/stormchat/internal/commands"

func main() {
	commands.Execute()
}
