package main

import "github.com/Mohsinsiddi/tokensale/cmd"

func main() {
	cmd.Execute()
}
