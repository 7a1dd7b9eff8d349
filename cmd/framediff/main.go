// Command framediff compares a raw LiDAR frame with its motion-compensated
// version.
//
// Build metadata is injected with:
//
//	go build -ldflags "-X github.com/banshee-data/framediff/internal/version.Version=v0.1.0 \
//	  -X github.com/banshee-data/framediff/internal/version.GitSHA=$(git rev-parse --short HEAD)" \
//	  ./cmd/framediff
package main

import (
	"fmt"
	"os"

	"github.com/banshee-data/framediff/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "framediff: %v\n", err)
		os.Exit(1)
	}
}
