package main

import "github.com/fakeyudi/forensim/cmd"

func main() {
	cmd.Execute()
}
