package main

import "github.com/kbukum/jig/cli"

func main() {
	cli.Execute()
}
