package main

import (
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/fileutil"
	"github.com/spf13/cobra"
)

func newDirCmd() *cobra.Command {
	var newest bool
	cmd := &cobra.Command{
		Use:   "dir <pattern>",
		Short: "List files matching a wildcard such as /in/*.csv",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fileutil.Dir(args[0], newest)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), list)
			return nil
		},
	}
	cmd.Flags().BoolVar(&newest, "newest", false, "sort by modification time, newest first")
	return cmd
}

func newCopyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "copy <source>... <dest>",
		Short: "Copy files, wildcards or the files of a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, dest := splitDest(args)
			list, err := fileutil.CopyAll(srcs, dest)
			printLines(cmd.OutOrStdout(), list)
			return err
		},
	}
}

func newMoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "move <source>... <dest>",
		Short: "Move files, wildcards or the files of a folder",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			srcs, dest := splitDest(args)
			list, err := fileutil.MoveAll(srcs, dest)
			printLines(cmd.OutOrStdout(), list)
			return err
		},
	}
}

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <file>...",
		Short: "Delete files or wildcards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fileutil.DeleteAll(args)
			printLines(cmd.OutOrStdout(), list)
			return err
		},
	}
}

func newArchiveCmd() *cobra.Command {
	var timestamp, datestamp bool
	cmd := &cobra.Command{
		Use:   "archive <file>...",
		Short: "Move files into yyyy-MM/yyyy-MM-dd below their folder",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if timestamp && datestamp {
				return errors.New("use --timestamp or --datestamp, not both")
			}
			fn := fileutil.ArchiveAll
			switch {
			case timestamp:
				fn = fileutil.ArchiveAndTimeStampAll
			case datestamp:
				fn = fileutil.ArchiveAndDateStampAll
			}
			list, err := fn(args)
			printLines(cmd.OutOrStdout(), list)
			return err
		},
	}
	cmd.Flags().BoolVar(&timestamp, "timestamp", false, "time stamp each file before archiving")
	cmd.Flags().BoolVar(&datestamp, "datestamp", false, "date stamp each file before archiving")
	return cmd
}

func newStampCmd() *cobra.Command {
	var dateOnly bool
	cmd := &cobra.Command{
		Use:   "stamp <file>",
		Short: "Rename base.ext to base.yyyyMMdd-HHmmss.ext",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stamp := fileutil.TimeStamp
			if dateOnly {
				stamp = fileutil.DateStamp
			}
			name, err := stamp(args[0])
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), []string{name})
			return nil
		},
	}
	cmd.Flags().BoolVar(&dateOnly, "date", false, "stamp with yyyyMMdd only")
	return cmd
}

func newMkdirCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mkdir <dir>",
		Short: "Create a folder and its parents",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, err := fileutil.MakeDirectory(args[0])
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), []string{dir})
			return nil
		},
	}
}

func newRmdirCmd() *cobra.Command {
	var clean bool
	cmd := &cobra.Command{
		Use:   "rmdir <dir>",
		Short: "Delete a folder and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if clean {
				return fileutil.CleanDirectory(args[0])
			}
			return fileutil.DeleteDirectory(args[0])
		},
	}
	cmd.Flags().BoolVar(&clean, "clean", false, "only empty the folder")
	return cmd
}

func newZipCmd() *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "zip <file>...",
		Short: "Add files to a zip file",
		Long:  "Add files to a zip file. A single file goes to <file>.zip unless --to is set.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if to == "" {
				if len(args) > 1 {
					return errors.New("--to is required with more than one file")
				}
				name, err := fileutil.Zip(args[0])
				if err != nil {
					return err
				}
				printLines(cmd.OutOrStdout(), []string{name})
				return nil
			}
			err := fileutil.ZipFiles(args, to)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), []string{to})
			return nil
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "zip file to add to")
	return cmd
}

func newZipDirCmd() *cobra.Command {
	var recursive bool
	cmd := &cobra.Command{
		Use:   "zipdir <dir>",
		Short: "Zip a folder into <dir>.zip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := fileutil.ZipDirectory(args[0], recursive)
			if err != nil {
				return err
			}
			printLines(cmd.OutOrStdout(), []string{name})
			return nil
		},
	}
	cmd.Flags().BoolVar(&recursive, "recursive", false, "include sub folders")
	return cmd
}

func newUnzipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unzip <zip> <dest>",
		Short: "Extract a zip file into a folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			list, err := fileutil.Unzip(args[0], args[1])
			printLines(cmd.OutOrStdout(), list)
			return err
		},
	}
}
