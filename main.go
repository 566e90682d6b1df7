package main

import "github.com/vibast-solutions/ms-go-comgate/cmd"

func main() {
	cmd.Execute()
}
