package main

import "github.com/KaramelBytes/ffcdb-cli/cmd"

func main() {
	cmd.Execute()
}
