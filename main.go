package main

import "github.com/smart-review/smart-review-cli/cmd"

func main() {
	cmd.Execute()
}
