package settings

import (
	"strconv"

	"github.com/pkg/errors"
	"github.com/scalesql/groovyutil/property"
)

// DefaultName is the profile name used for property file settings
const DefaultName = "default"

// FromProperties builds "default" profiles from the imap.*, smtp.*, ftp.*
// and ses.* keys. A kind is skipped when its server or region is missing.
func FromProperties(store *property.Store) (Profiles, error) {
	p := NewProfiles()
	p.Files = []string{store.Name()}

	if server := store.Get("imap.server"); server != "" {
		p.IMAP[DefaultName] = Profile{
			Name:     DefaultName,
			Server:   server,
			User:     store.Get("imap.user"),
			Password: store.Get("imap.password"),
		}
	}
	if server := store.Get("smtp.server"); server != "" {
		p.SMTP[DefaultName] = Profile{
			Name:     DefaultName,
			Server:   server,
			User:     store.Get("smtp.user"),
			Password: store.Get("smtp.password"),
		}
	}
	if server := store.Get("ftp.server"); server != "" {
		sftp := Profile{
			Name:     DefaultName,
			Server:   server,
			User:     store.Get("ftp.user"),
			Password: store.Get("ftp.password"),
			Identity: store.Get("ftp.identity"),
		}
		if port := store.Get("ftp.port"); port != "" {
			n, err := strconv.Atoi(port)
			if err != nil {
				return p, errors.Wrapf(err, "ftp.port: %s", port)
			}
			sftp.Port = n
		}
		p.SFTP[DefaultName] = sftp
	}
	if region := store.Get("ses.region"); region != "" {
		p.SES[DefaultName] = SESProfile{
			Name:            DefaultName,
			Region:          region,
			Sender:          store.Get("ses.sender"),
			AccessKeyID:     store.Get("ses.access_key_id"),
			SecretAccessKey: store.Get("ses.secret_access_key"),
		}
	}
	return p, nil
}
