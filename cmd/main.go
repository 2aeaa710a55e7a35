package main

import "alarmsound/internal/cli"

func main() {
	cli.Execute()
}
