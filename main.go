package main

import "github.com/fuglede/youtrack-to-azure-devops-boards/cmd"

func main() {
	cmd.Execute()
}
