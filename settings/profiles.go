package settings

import (
	"fmt"
	"net"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/scalesql/groovyutil/emailutil"
	"github.com/scalesql/groovyutil/ftputil"
	"gobn.github.io/coalesce"
)

// Profile is a resolved sftp, imap or smtp server
type Profile struct {
	Name     string
	Server   string
	Port     int
	User     string
	Password string
	Identity string
}

// Address is server:port, or the server alone if no port is set
func (p Profile) Address() string {
	if p.Port == 0 {
		return p.Server
	}
	return net.JoinHostPort(p.Server, strconv.Itoa(p.Port))
}

// SFTPConfig converts the profile for ftputil.Open
func (p Profile) SFTPConfig() ftputil.Config {
	return ftputil.Config{
		Server:       p.Server,
		Port:         p.Port,
		User:         p.User,
		Password:     p.Password,
		IdentityFile: p.Identity,
	}
}

// SESProfile is a resolved ses block
type SESProfile struct {
	Name            string
	Region          string
	Sender          string
	AccessKeyID     string
	SecretAccessKey string
}

// SESConfig converts the profile for emailutil.NewSESSender
func (p SESProfile) SESConfig() emailutil.SESConfig {
	return emailutil.SESConfig{
		Region:          p.Region,
		Sender:          p.Sender,
		AccessKeyID:     p.AccessKeyID,
		SecretAccessKey: p.SecretAccessKey,
	}
}

// ProfileMap is keyed by the lower case block label
type ProfileMap map[string]Profile

// Profiles holds everything read from one or more files
type Profiles struct {
	Files []string
	SFTP  ProfileMap
	IMAP  ProfileMap
	SMTP  ProfileMap
	SES   map[string]SESProfile
}

// NewProfiles returns empty maps
func NewProfiles() Profiles {
	return Profiles{
		Files: []string{},
		SFTP:  ProfileMap{},
		IMAP:  ProfileMap{},
		SMTP:  ProfileMap{},
		SES:   map[string]SESProfile{},
	}
}

// Get finds a profile by name in any case
func (m ProfileMap) Get(name string) (Profile, bool) {
	key, _ := profileKey(name)
	p, ok := m[key]
	return p, ok
}

// SESProfile finds an SES profile by name in any case
func (p Profiles) SESProfile(name string) (SESProfile, bool) {
	key, _ := profileKey(name)
	ses, ok := p.SES[key]
	return ses, ok
}

// Names returns the sorted profile names
func (m ProfileMap) Names() []string {
	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

var idregex = regexp.MustCompile(`^([a-zA-Z0-9][a-zA-Z0-9-_\.]*[a-zA-Z0-9-_]{0,1})$`)

func profileKey(id string) (string, bool) {
	key := strings.TrimSpace(strings.ToLower(id))
	return key, idregex.MatchString(key)
}

func makeProfiles(names []string, files []ProfileFile) (Profiles, []string) {
	msgs := make([]string, 0)
	p := NewProfiles()
	p.Files = names
	for _, pf := range files {
		d := pf.Defaults
		if d == nil {
			d = &Defaults{}
		}
		for _, kind := range []struct {
			name string
			defs []ServerDef
			m    ProfileMap
		}{
			{"sftp", pf.SFTP, p.SFTP},
			{"imap", pf.IMAP, p.IMAP},
			{"smtp", pf.SMTP, p.SMTP},
		} {
			for _, def := range kind.defs {
				key, ok := profileKey(def.ID)
				if !ok {
					msgs = append(msgs, fmt.Sprintf("%s: invalid key: '%s'", kind.name, key))
					continue
				}
				if _, exists := kind.m[key]; exists {
					msgs = append(msgs, fmt.Sprintf("%s: duplicate key: '%s'", kind.name, key))
					continue
				}
				kind.m[key] = Profile{
					Name:     key,
					Server:   *coalesce.String(def.Server, &def.ID),
					Port:     firstInt(def.Port),
					User:     *coalesce.String(def.User, d.User, ptr("")),
					Password: *coalesce.String(def.Password, d.Password, ptr("")),
					Identity: *coalesce.String(def.Identity, d.Identity, ptr("")),
				}
			}
		}

		for _, def := range pf.SES {
			key, ok := profileKey(def.ID)
			if !ok {
				msgs = append(msgs, fmt.Sprintf("ses: invalid key: '%s'", key))
				continue
			}
			if _, exists := p.SES[key]; exists {
				msgs = append(msgs, fmt.Sprintf("ses: duplicate key: '%s'", key))
				continue
			}
			p.SES[key] = SESProfile{
				Name:            key,
				Region:          *coalesce.String(def.Region, d.Region, ptr("")),
				Sender:          *coalesce.String(def.Sender, d.Sender, ptr("")),
				AccessKeyID:     *coalesce.String(def.AccessKeyID, ptr("")),
				SecretAccessKey: *coalesce.String(def.SecretAccessKey, ptr("")),
			}
		}
	}
	return p, msgs
}

func firstInt(vals ...*int) int {
	for _, v := range vals {
		if v != nil {
			return *v
		}
	}
	return 0
}
