package main

import "github.com/renderlab/gtcheck/cmd"

func main() {
	cmd.Execute()
}
