package main

import "github.com/IrishAnn-code/HomeLibrary/internal/cli"

func main() {
	cli.Execute()
}
