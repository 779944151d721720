// Command checkin runs the kiosk check-in API and its schema migrations.
package main

import (
	"os"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
