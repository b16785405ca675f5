package main

import "github.com/KaramelBytes/bnbeda/cmd"

func main() {
	cmd.Execute()
}
