// cmd/co2uncert/main.go
package main

import (
	"os"

	"co2sys/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:], os.Stdout, os.Stderr))
}
