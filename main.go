package main

import "github.com/chrisdamba/pupulse/cmd"

func main() {
	cmd.Execute()
}
