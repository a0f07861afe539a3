package main

import "breath-monitor/internal/cli"

func main() {
	cli.Execute()
}
