package main

import "github.com/voxnote/voxnote/internal/cli"

func main() {
	cli.Execute()
}
