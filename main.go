package main

import "github.com/naka-gawa/profile-stats/cmd"

func main() {
	cmd.Execute()
}
