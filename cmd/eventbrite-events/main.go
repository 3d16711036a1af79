package main

import "github.com/pfrederiksen/eventbrite-events/internal/cli"

func main() {
	cli.Execute()
}
