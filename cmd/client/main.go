package main

import "github.com/guessparty/guessparty-go/internal/cli"

func main() {
	cli.Execute()
}
