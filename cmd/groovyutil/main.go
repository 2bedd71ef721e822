package main

import (
	"fmt"
	"os"

	"github.com/bugsnag/panicwrap"
	"github.com/fatih/color"
	"github.com/scalesql/groovyutil/internal/failure"
	"github.com/scalesql/groovyutil/logutil"
	"github.com/sirupsen/logrus"
)

var buildGit = "undefined"
var buildDate = "undefined"

func main() {
	exitStatus, err := panicwrap.BasicWrap(panicHandler)
	if err != nil {
		panic(err)
	}
	// the parent process waits for the child and exits with its status
	if exitStatus >= 0 {
		os.Exit(exitStatus)
	}

	failure.BuildGit = buildGit
	failure.BuildDate = buildDate
	defer failure.HandlePanic()

	err = newRootCmd().Execute()
	if err != nil {
		for _, e := range logutil.Recent() {
			if e.Level <= logrus.ErrorLevel {
				color.Yellow(e.String())
			}
		}
		color.Red(fmt.Sprintf("error: %s", err))
		os.Exit(1)
	}
}

func panicHandler(output string) {
	fmt.Fprintln(os.Stderr, output)
	failure.WriteFile("panic", output)
}
