// Ottobrew is a manual coffee brewing companion: a recipe library and a
// step-by-step countdown, served over HTTP and MCP or run in the terminal.
//
// Usage:
//
//	ottobrew serve                 run the HTTP API
//	ottobrew brew <recipe-id>      run a countdown in the terminal
//	ottobrew recipes list|show     browse the library
//	ottobrew generate              ask the AI for a recipe
//	ottobrew mcp                   serve MCP tools on stdio
package main

func main() {
	Execute()
}
