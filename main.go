package main

import "github.com/sebastiaanschool/schoolhub/cmd"

func main() {
	cmd.Execute()
}
