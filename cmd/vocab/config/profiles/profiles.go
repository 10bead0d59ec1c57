// Package profiles manages the profile store of the vocab CLI.
//
// The profile store is a YAML file mapping profile names to VocabProfiles:
//
//	my-site:
//	  apiRoot: https://vocab.example.com/api/3/action
//	  apiKey: eyJhbGciOi...
//	  cert:
//	    ca: LS0tLS1CRUdJTi...
package profiles

import (
	"encoding/base64"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"

	"github.com/hectane/go-acl"
	"github.com/opst/vocabfab/cmd/vocab/config/open"
	yaml "gopkg.in/yaml.v3"
)

var ErrProfileStoreNotFound = errors.New("profile store is not found")
var ErrCannotCreateConfig = errors.New("cannot create profile store")
var ErrCannotUpdateConfig = errors.New("cannot update profile store")
var ErrProfileInvalid = errors.New("vocab profile is invalid")

// ProfileStore is a map from profile name to VocabProfile.
type ProfileStore map[string]*VocabProfile

type VocabCert struct {
	// base64 encoded CA certificate
	CA string `yaml:"ca,omitempty"`
}

// VocabProfile tells how to reach the vocabd.
type VocabProfile struct {
	// root of the action API, like https://vocab.example.com/api/3/action
	ApiRoot string `yaml:"apiRoot"`

	// ApiKey is an api token issued for you.
	// Without this, you can only read.
	ApiKey string `yaml:"apiKey,omitempty"`

	Cert VocabCert `yaml:"cert,omitempty"`
}

func verifyUrl(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.IsAbs()
}

func verifyPEM(b64cert string) bool {
	bin, err := base64.StdEncoding.DecodeString(b64cert)
	if err != nil {
		return false
	}
	blk, _ := pem.Decode(bin)
	return blk != nil
}

// Verify VocabProfile
//
// # Return
//
// nil if it is valid. Otherwise, ErrProfileInvalid error.
func (p *VocabProfile) Verify() error {
	if !verifyUrl(p.ApiRoot) {
		return fmt.Errorf("%w: apiRoot is not URL: %s", ErrProfileInvalid, p.ApiRoot)
	}
	if p.Cert.CA != "" && !verifyPEM(p.Cert.CA) {
		return fmt.Errorf("%w: cert.ca is not PEM", ErrProfileInvalid)
	}
	return nil
}

// LoadProfileStore loads profile store from file.
func LoadProfileStore(filepath string) (ProfileStore, error) {
	buf, err := os.ReadFile(filepath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w at %s", ErrProfileStoreNotFound, filepath)
		}
		return nil, err
	}
	return Unmarshall(buf)
}

// Unmarshall profile store from yaml in byte array.
func Unmarshall(buf []byte) (ProfileStore, error) {
	ret := ProfileStore{}
	if err := yaml.Unmarshal(buf, &ret); err != nil {
		return nil, err
	}
	return ret, nil
}

// Save profile store to file.
//
// The file is readable only for the current user, even if it has been there
// with loose permission. Before overwriting, the old content is copied to
// path + ".backup", which is removed when saving is done.
func (ps ProfileStore) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), os.FileMode(0700)); err != nil {
		return err
	}

	f, err := os.OpenFile(path, os.O_RDWR, os.FileMode(0600))
	switch {
	case err == nil:
		if err := acl.Chmod(path, os.FileMode(0600)); err != nil {
			f.Close()
			return err
		}
	case os.IsPermission(err):
		return fmt.Errorf("%w, because no permission to write file at %s", ErrCannotUpdateConfig, path)
	case os.IsNotExist(err):
		f, err = open.NewSafeFile(path)
		if err != nil {
			return fmt.Errorf("%w: cannot create a file at %s: %w", ErrCannotCreateConfig, path, err)
		}
	default:
		return err
	}
	defer f.Close()

	bkpath := path + ".backup"
	bk, err := open.NewSafeFile(bkpath)
	if err != nil {
		return err
	}
	defer bk.Close()
	if _, err := io.Copy(bk, f); err != nil {
		return err
	}

	buf, err := yaml.Marshal(ps)
	if err != nil {
		return err
	}
	if _, err := f.Seek(0, 0); err != nil {
		return err
	}
	if err := f.Truncate(0); err != nil {
		return err
	}
	if _, err := f.Write(buf); err != nil {
		// keep the backup to recover.
		return fmt.Errorf("%w (the old one is at %s)", err, bkpath)
	}
	return os.Remove(bkpath)
}
