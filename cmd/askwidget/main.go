// Command askwidget is a terminal chat widget for a campus assistant service.
package main

import "github.com/lnmiit/askwidget/internal/commands"

func main() {
	commands.Execute()
}
