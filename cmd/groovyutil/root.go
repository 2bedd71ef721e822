package main

import (
	"fmt"
	"io"

	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/logutil"
	"github.com/scalesql/groovyutil/property"
	"github.com/scalesql/groovyutil/settings"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	debug      bool
	logDir     string
	properties string
	config     string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:   "groovyutil",
		Short: "File, SFTP and mail utilities for batch scripts",
		Long: `groovyutil runs the file, SFTP, mail, property and date helpers
from the command line.

Connection settings come from application.properties (ftp.*, imap.*,
smtp.*, ses.* keys) or from an HCL profile file given with --config.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       fmt.Sprintf("%s (%s)", buildGit, buildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup()
		},
	}
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "log at debug level")
	root.PersistentFlags().StringVar(&opts.logDir, "log", "", "also write the log to a time stamped file in this folder")
	root.PersistentFlags().StringVar(&opts.properties, "properties", "", "property file (default: application.properties if found)")
	root.PersistentFlags().StringVar(&opts.config, "config", "", "HCL profile file")

	root.AddCommand(
		newDirCmd(),
		newCopyCmd(),
		newMoveCmd(),
		newDeleteCmd(),
		newArchiveCmd(),
		newStampCmd(),
		newMkdirCmd(),
		newRmdirCmd(),
		newZipCmd(),
		newZipDirCmd(),
		newUnzipCmd(),
		newPropCmd(),
		newTimeCmd(),
		newSFTPCmd(opts),
		newMailCmd(opts),
	)
	return root
}

func (opts *rootOptions) setup() error {
	logutil.ConfigureConsole()
	if opts.debug {
		if err := logutil.SetLevel("debug"); err != nil {
			return err
		}
	}
	if opts.logDir != "" {
		name, err := logutil.ConfigureFileLogging(opts.logDir)
		if err != nil {
			return errors.Wrap(err, "configurefilelogging")
		}
		logrus.Debugf("logging to %s", name)
	}
	if opts.properties != "" {
		if err := property.Open(opts.properties); err != nil {
			return errors.Wrap(err, "property.open")
		}
		return nil
	}
	// the default file is optional
	if err := property.Open(property.DefaultFile); err != nil {
		logrus.Debugf("no %s: %s", property.DefaultFile, err)
	}
	return nil
}

// profiles reads --config if set and the property file otherwise
func (opts *rootOptions) profiles() (settings.Profiles, error) {
	if opts.config == "" {
		return settings.FromProperties(property.Default())
	}
	p, msgs, err := settings.ReadHCL(opts.config)
	if err != nil {
		return p, errors.Wrap(err, "settings.readhcl")
	}
	for _, msg := range msgs {
		logrus.Warnf("%s: %s", opts.config, msg)
	}
	return p, nil
}

func printLines(w io.Writer, lines []string) {
	for _, l := range lines {
		fmt.Fprintln(w, l)
	}
}

// splitDest returns the sources and the final destination argument
func splitDest(args []string) ([]string, string) {
	return args[:len(args)-1], args[len(args)-1]
}
