package main

import "github.com/KaramelBytes/immo-eda/cmd"

func main() {
	cmd.Execute()
}
