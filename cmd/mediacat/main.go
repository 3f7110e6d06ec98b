package main

import "github.com/dshills/mediacat-mcp/internal/cli"

func main() {
	cli.Execute()
}
