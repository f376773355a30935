package main

import (
	"context"
	"fmt"
	"os"

	"aggregator/bootstrap"
)

func main() {
	if err := bootstrap.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "aggregator: %v\n", err)
		os.Exit(1)
	}
}
