package main

import (
	"fmt"
	"os"

	"github.com/temirov/hallmonitor/cmd/cli"
)

const (
	exitErrorTemplateConstant = "%v\n"
)

// main executes the hallmonitor command-line application.
func main() {
	if executionError := cli.Execute(); executionError != nil {
		fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		os.Exit(cli.ExitCode(executionError))
	}
}
