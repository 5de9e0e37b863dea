package main

import (
	"github.com/gostc/stc/pkg/cmd"
)

func main() {
	cmd.Execute()
}
