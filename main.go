package main

import "github.com/ventworks/ductflow/cmd"

func main() {
	cmd.Execute()
}
