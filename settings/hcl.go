// Package settings reads connection profiles for the SFTP, IMAP, SMTP
// and SES clients from an HCL file or from a property file.
package settings

import (
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// DefaultFile is looked up beside the executable
const DefaultFile = "groovyutil.hcl"

// ProfileFile is the layout of an HCL profile file
type ProfileFile struct {
	Defaults *Defaults   `hcl:"defaults,block"`
	SFTP     []ServerDef `hcl:"sftp,block"`
	IMAP     []ServerDef `hcl:"imap,block"`
	SMTP     []ServerDef `hcl:"smtp,block"`
	SES      []SESDef    `hcl:"ses,block"`
}

// Defaults apply to every block in the file
type Defaults struct {
	User     *string `hcl:"user"`
	Password *string `hcl:"password"`
	Identity *string `hcl:"identity"`
	Region   *string `hcl:"region"`
	Sender   *string `hcl:"sender"`
}

// ServerDef is an sftp, imap or smtp block
type ServerDef struct {
	ID       string  `hcl:"id,label"`
	Server   *string `hcl:"server"`
	Port     *int    `hcl:"port"`
	User     *string `hcl:"user"`
	Password *string `hcl:"password"`
	Identity *string `hcl:"identity"`
}

// SESDef is an ses block
type SESDef struct {
	ID              string  `hcl:"id,label"`
	Region          *string `hcl:"region"`
	Sender          *string `hcl:"sender"`
	AccessKeyID     *string `hcl:"access_key_id"`
	SecretAccessKey *string `hcl:"secret_access_key"`
}

// ReadFile reads a file and fixes backslashes
func ReadFile(fs afero.Fs, file string) ([]byte, error) {
	bb, err := afero.ReadFile(fs, file)
	if err != nil {
		return bb, errors.Wrap(err, "afero.readfile")
	}
	return FixSlashes(bb), nil
}

// ReadHCL reads profile files from the OS file system.
// Problems with individual blocks are returned as messages.
func ReadHCL(names ...string) (Profiles, []string, error) {
	return ReadHCLFs(afero.NewOsFs(), names...)
}

// ReadHCLFs reads profile files from fs
func ReadHCLFs(fs afero.Fs, names ...string) (Profiles, []string, error) {
	files := make([]ProfileFile, 0, len(names))
	for _, f := range names {
		logrus.Tracef("settings: read: %s", f)
		bb, err := ReadFile(fs, f)
		if err != nil {
			return NewProfiles(), []string{}, errors.Wrap(err, "readfile")
		}
		pf := ProfileFile{}
		err = hclsimple.Decode(f, bb, nil, &pf)
		if err != nil {
			return NewProfiles(), []string{}, errors.Wrapf(err, "hclsimple.decode: %s", f)
		}
		files = append(files, pf)
	}
	p, msgs := makeProfiles(names, files)
	return p, msgs, nil
}
