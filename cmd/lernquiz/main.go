package main

import (
	"github.com/lernquiz/lernquiz-go/internal/cli"
)

func main() {
	cli.Execute()
}
