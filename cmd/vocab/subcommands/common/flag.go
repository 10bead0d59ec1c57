package common

import (
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/opst/vocabfab/pkg/utils/searchfile"
)

// ProfileFile is the name of the file telling which profile to use.
// It is searched from the working directory upward.
const ProfileFile = ".vocabprofile"

type CommonFlags struct {
	Profile      string `flag:"profile" help:"vocab profile name to use"`
	ProfileStore string `flag:"profile-store" help:"path to vocab profile store file"`
	Verbose      bool   `flag:"verbose" help:"log errors in detail"`
}

type commonFlagDetection struct {
	home string
}

type CommonFlagDetectionOption func(*commonFlagDetection) *commonFlagDetection

func WithHome(home string) CommonFlagDetectionOption {
	return func(opt *commonFlagDetection) *commonFlagDetection {
		opt.home = home
		return opt
	}
}

// Flags returns default CommonFlags for a working directory.
//
// Profile is the first line of the nearest .vocabprofile,
// or the (absolute) working directory if there are no such files.
// ProfileStore is ~/.vocab/profile .
func Flags(from string, opt ...CommonFlagDetectionOption) (CommonFlags, error) {
	detparam := commonFlagDetection{}
	for _, o := range opt {
		detparam = *o(&detparam)
	}

	home := detparam.home
	if home == "" {
		if h, err := os.UserHomeDir(); err == nil {
			home = h
		}
	}

	if abs, err := filepath.Abs(from); err == nil {
		from = abs
	}

	profile := from
	found, err := searchfile.Upward(from, ProfileFile)
	switch {
	case err == nil:
		content, err := os.ReadFile(found)
		if err != nil {
			return CommonFlags{}, err
		}
		first, _, _ := strings.Cut(string(content), "\n")
		if p := strings.TrimSpace(first); p != "" {
			profile = p
		}
	case errors.Is(err, searchfile.ErrNotFound):
	default:
		return CommonFlags{}, err
	}

	return CommonFlags{
		Profile:      profile,
		ProfileStore: filepath.Join(home, ".vocab", "profile"),
	}, nil
}
