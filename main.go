package main

import "dashboard-service/cli"

func main() {
	cli.Execute()
}
