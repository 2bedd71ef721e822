package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/emailutil"
	"github.com/scalesql/groovyutil/ftputil"
	"github.com/scalesql/groovyutil/settings"
	"github.com/spf13/cobra"
)

type sessionFunc func(s *ftputil.Session, args []string) ([]string, error)

func newSFTPCmd(opts *rootOptions) *cobra.Command {
	var profile, cd string
	cmd := &cobra.Command{
		Use:   "sftp",
		Short: "List, get, put and remove files on an SFTP server",
	}
	cmd.PersistentFlags().StringVar(&profile, "profile", settings.DefaultName, "sftp profile name")
	cmd.PersistentFlags().StringVar(&cd, "cd", "", "remote folder to change to first")

	run := func(fn sessionFunc) func(cmd *cobra.Command, args []string) error {
		return func(cmd *cobra.Command, args []string) error {
			p, err := opts.profiles()
			if err != nil {
				return err
			}
			prof, ok := p.SFTP.Get(profile)
			if !ok {
				return errors.Errorf("sftp profile not found: %s", profile)
			}
			s, err := ftputil.Open(cmd.Context(), prof.SFTPConfig())
			if err != nil {
				return err
			}
			defer s.Close()
			if cd != "" {
				if err = s.Cd(cd); err != nil {
					return err
				}
			}
			list, err := fn(s, args)
			printLines(cmd.OutOrStdout(), list)
			return err
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls [spec]",
			Short: "List remote names",
			Args:  cobra.MaximumNArgs(1),
			RunE: run(func(s *ftputil.Session, args []string) ([]string, error) {
				spec := "."
				if len(args) == 1 {
					spec = args[0]
				}
				return s.Ls(spec)
			}),
		},
		&cobra.Command{
			Use:   "get <remote> [local]",
			Short: "Download files",
			Args:  cobra.RangeArgs(1, 2),
			RunE: run(func(s *ftputil.Session, args []string) ([]string, error) {
				if len(args) == 2 {
					return s.GetTo(args[0], args[1])
				}
				return s.Get(args[0])
			}),
		},
		&cobra.Command{
			Use:   "put <local> [remote]",
			Short: "Upload files",
			Args:  cobra.RangeArgs(1, 2),
			RunE: run(func(s *ftputil.Session, args []string) ([]string, error) {
				if len(args) == 2 {
					return s.PutTo(args[0], args[1])
				}
				return s.Put(args[0])
			}),
		},
		&cobra.Command{
			Use:   "rm <remote>",
			Short: "Remove remote files",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(s *ftputil.Session, args []string) ([]string, error) {
				return s.Rm(args[0])
			}),
		},
	)
	return cmd
}

type mailOptions struct {
	via      string
	profile  string
	from     string
	to       []string
	cc       []string
	bcc      []string
	subject  string
	body     string
	html     string
	attach   []string
	bodyFile string
}

func newMailCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mail",
		Short: "Send mail",
	}
	mo := &mailOptions{}
	send := &cobra.Command{
		Use:   "send",
		Short: "Send a message through SMTP or SES",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			msg, err := mo.message()
			if err != nil {
				return err
			}
			p, err := opts.profiles()
			if err != nil {
				return err
			}
			sender, closer, err := mo.sender(cmd.Context(), p)
			if err != nil {
				return err
			}
			defer closer()
			return sender.Send(cmd.Context(), msg)
		},
	}
	send.Flags().StringVar(&mo.via, "via", "smtp", "smtp or ses")
	send.Flags().StringVar(&mo.profile, "profile", settings.DefaultName, "smtp or ses profile name")
	send.Flags().StringVar(&mo.from, "from", "", "from address (default: the login or the SES sender)")
	send.Flags().StringSliceVar(&mo.to, "to", []string{}, "to addresses")
	send.Flags().StringSliceVar(&mo.cc, "cc", []string{}, "cc addresses")
	send.Flags().StringSliceVar(&mo.bcc, "bcc", []string{}, "bcc addresses")
	send.Flags().StringVar(&mo.subject, "subject", "", "subject")
	send.Flags().StringVar(&mo.body, "body", "", "plain text body")
	send.Flags().StringVar(&mo.bodyFile, "body-file", "", "read the plain text body from a file")
	send.Flags().StringVar(&mo.html, "html", "", "HTML body")
	send.Flags().StringSliceVar(&mo.attach, "attach", []string{}, "files to attach")
	cmd.AddCommand(send, newMailFirstCmd(opts))
	return cmd
}

func newMailFirstCmd(opts *rootOptions) *cobra.Command {
	var profile, folder, archive string
	var remove bool
	cmd := &cobra.Command{
		Use:   "first",
		Short: "Print the first message of an IMAP folder",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := opts.profiles()
			if err != nil {
				return err
			}
			prof, ok := p.IMAP.Get(profile)
			if !ok {
				return errors.Errorf("imap profile not found: %s", profile)
			}
			s, err := emailutil.OpenIMAP(prof.Address(), prof.User, prof.Password)
			if err != nil {
				return err
			}
			defer s.Close()
			if err = s.OpenFolder(folder); err != nil {
				return err
			}
			msg, err := s.FirstMessage()
			if err != nil {
				return err
			}
			if msg == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "%s is empty\n", folder)
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "From:    %s\nDate:    %s\nSubject: %s\n\n%s\n", msg.From, msg.Date, msg.Subject, msg.Text)
			for _, a := range msg.Attachments {
				fmt.Fprintf(cmd.OutOrStdout(), "Attachment: %s (%s)\n", a.Filename, humanize.Bytes(uint64(len(a.Data))))
			}
			if archive != "" {
				if err = s.CopyToFolder(msg, archive); err != nil {
					return err
				}
			}
			if remove {
				return s.Delete(msg)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&profile, "profile", settings.DefaultName, "imap profile name")
	cmd.Flags().StringVar(&folder, "folder", "INBOX", "folder to read")
	cmd.Flags().StringVar(&archive, "archive", "", "copy the message to this folder")
	cmd.Flags().BoolVar(&remove, "delete", false, "delete the message after reading it")
	return cmd
}

func (mo *mailOptions) message() (*emailutil.Message, error) {
	msg := emailutil.NewMessage()
	msg.From = mo.from
	msg.To = mo.to
	msg.Cc = mo.cc
	msg.Bcc = mo.bcc
	msg.Subject = mo.subject
	msg.Text = mo.body
	msg.HTML = mo.html
	if mo.bodyFile != "" {
		bb, err := os.ReadFile(mo.bodyFile)
		if err != nil {
			return nil, errors.Wrap(err, "os.readfile")
		}
		msg.Text = string(bb)
	}
	for _, f := range mo.attach {
		bb, err := os.ReadFile(f)
		if err != nil {
			return nil, errors.Wrap(err, "os.readfile")
		}
		msg.AddAttachment(filepath.Base(f), "", bb)
	}
	return msg, nil
}

func (mo *mailOptions) sender(ctx context.Context, p settings.Profiles) (emailutil.Sender, func(), error) {
	switch mo.via {
	case "smtp":
		prof, ok := p.SMTP.Get(mo.profile)
		if !ok {
			return nil, nil, errors.Errorf("smtp profile not found: %s", mo.profile)
		}
		s, err := emailutil.OpenSMTP(prof.Address(), prof.User, prof.Password)
		if err != nil {
			return nil, nil, err
		}
		return s, func() { _ = s.Close() }, nil
	case "ses":
		prof, ok := p.SESProfile(mo.profile)
		if !ok {
			return nil, nil, errors.Errorf("ses profile not found: %s", mo.profile)
		}
		s, err := emailutil.NewSESSender(ctx, prof.SESConfig())
		if err != nil {
			return nil, nil, err
		}
		return s, func() {}, nil
	}
	return nil, nil, errors.Errorf("unknown --via: %s", mo.via)
}
