package main

import (
	"github.com/permscope/permscope/cmd"
)

func main() {
	cmd.Execute()
}
