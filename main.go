package main

import "github.com/atikulmunna/weblog/internal/cmd"

func main() {
	cmd.Execute()
}
