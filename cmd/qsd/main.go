package main

import (
	"os"

	"github.com/gonzacha/qsd/internal/app"
)

func main() {
	os.Exit(app.Run(os.Args[1:]))
}
