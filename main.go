package main

import "snaudit/prism/cmd"

func main() {
	cmd.Execute()
}
