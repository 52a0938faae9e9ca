// Command gosimplify simplifies expression trees from the command line.
//
// Usage:
//
//	gosimplify simplify '{"type":"add","left":{"type":"const","value":0},"right":{"type":"var","name":"x"}}'
//	gosimplify check suites/*.yaml
//	gosimplify repl
//	gosimplify history --config gosimplify.yaml
package main

import (
	"os"

	"github.com/njchilds90/gosimplify/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}
