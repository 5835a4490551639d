package main

import (
	"github.com/ankitni/charchat/internal/cli"
)

func main() {
	cli.Execute()
}
