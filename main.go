package main

import "instatrack/cmd"

func main() {
	cmd.Execute()
}
