package main

import "github.com/robpurser/sitecheck/cmd"

func main() {
	cmd.Execute()
}
