// Package failure offers functions to support panics.
package failure

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

var BuildGit string = "undefined"
var BuildDate string = "undefined"

var fs = afero.NewOsFs()

// HandlePanic runs a recover and writes any panic to
// stderr and writes a text file with the details.
//
// Commands should "defer failure.HandlePanic()" at startup.
func HandlePanic() {
	r := recover()
	if r != nil {
		msg := Report(r, string(debug.Stack()))
		fmt.Fprintln(os.Stderr, msg)
		WriteFile("panic", msg)
	}
}

// Report formats a recovered value and stack for the panic file
func Report(r any, stack string) string {
	msg := "===================================\nPANIC\n"
	msg += "-----------------------------------\n"
	msg += fmt.Sprintf("Build: %s\n", BuildGit)
	msg += fmt.Sprintf("Date:  %s\n", BuildDate)
	msg += "-----------------------------------\n"
	msg += fmt.Sprintf("%v\n", r)
	msg += "===================================\n"
	if stack != "" {
		msg += fmt.Sprintf("\n===================================\nSTACK\n-----------------------------------\n%s", stack)
		msg += "\n===================================\n"
	}
	return msg
}

// WriteFile generates a time stamped file in the EXE folder.
// It falls back to the current folder if the EXE folder can't be found.
// prefix is used to build the file name: groovyutil_prefix_ymd_hms.txt.
// It returns the name of the file written.
func WriteFile(prefix, body string) string {
	dir := "."
	ex, err := os.Executable()
	if err == nil {
		dir = filepath.Dir(ex)
	}
	name, err := writeFile(fs, dir, prefix, body, time.Now())
	if err != nil {
		logrus.Error(errors.Wrap(err, "failure.writefile"))
	}
	return name
}

func writeFile(fs afero.Fs, dir, prefix, body string, now time.Time) (string, error) {
	if prefix == "" {
		prefix = "unknown"
	}
	ts := now.Format("20060102_150405")
	name := filepath.Join(dir, fmt.Sprintf("groovyutil_%s_%s.txt", prefix, ts))
	err := afero.WriteFile(fs, name, []byte(body), 0644)
	if err != nil {
		return name, errors.Wrap(err, "afero.writefile")
	}
	return name, nil
}
