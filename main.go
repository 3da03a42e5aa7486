package main

import "github.com/fitstack/fitness-platform/cmd"

func main() {
	cmd.Execute()
}
