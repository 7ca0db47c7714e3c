package main

import "github.com/petrarca/repo-analyzer/internal/cmd"

func main() {
	cmd.Execute()
}
