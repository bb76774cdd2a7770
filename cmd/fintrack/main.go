package main

import "github.com/vietddude/fintrack/internal/cli"

func main() {
	cli.Execute()
}
