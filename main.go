package main

import "github.com/mj1618/droid-a11y/cmd"

func main() {
	cmd.Execute()
}
