package main

import (
	"os"

	"github.com/semantiq/semantiq/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
