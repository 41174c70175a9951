package main

import "github.com/drgolem/tmediago/cmd"

func main() {
	cmd.Execute()
}
