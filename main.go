package main

import "github.com/okorolenko/bookcat/cmd"

func main() {
	cmd.Execute()
}
