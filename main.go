package main

import "github.com/openkeys/assetmanifest/cmd"

func main() {
	cmd.Execute()
}
