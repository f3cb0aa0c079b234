package main

import "github.com/wardenlabs/warden/cmd"

func main() {
	cmd.Execute()
}
