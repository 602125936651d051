package main

import "github.com/tnicklin/timebudget/cli"

var version = "dev"

func main() {
	cli.Execute(version)
}
