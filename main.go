package main

import "github.com/framecull/framecull/cmd"

func main() {
	cmd.Execute()
}
