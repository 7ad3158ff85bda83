package main

import (
	"github.com/anoixa/imagehost/cmd"
)

func main() {
	cmd.Execute()
}
