package main

import "github.com/esptools/espmon/cmd"

func main() {
	cmd.Execute()
}
