package init

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/opst/vocabfab/cmd/vocab/config/open"
	prof "github.com/opst/vocabfab/cmd/vocab/config/profiles"
	"github.com/opst/vocabfab/cmd/vocab/subcommands/common"
	"github.com/youta-t/flarc"
	"gopkg.in/yaml.v3"
)

const ARG_PROFILE_FILE = "PROFILE_FILE"

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Register a vocab profile and use it in this directory.",
		struct{}{},
		flarc.Args{
			{
				Name: ARG_PROFILE_FILE, Required: true,
				Help: "filepath to a profile file, which you received from your admin.",
			},
		},
		common.NewTaskWithCommonFlag(Task(".")),
		flarc.WithDescription(`
Register a new profile into your profile store.

A profile tells where vocabd is and the api key to call it.
The name of the profile is given by "--profile" (default: current directory).

{{ .Command }} also writes .vocabprofile in the current directory,
so commands in this directory (and its descendants) use the profile.
`),
	)
}

// Task registers the profile, and writes .vocabprofile into dir.
func Task(dir string) common.TaskWithCommonFlag[struct{}] {
	return func(
		ctx context.Context,
		logger *log.Logger,
		cf common.CommonFlags,
		cl flarc.Commandline[struct{}],
		params []any,
	) error {
		profFile := cl.Args()[ARG_PROFILE_FILE][0]

		profStore, err := prof.LoadProfileStore(cf.ProfileStore)
		if errors.Is(err, prof.ErrProfileStoreNotFound) {
			// ok.
			profStore = prof.ProfileStore{}
		} else if err != nil {
			return fmt.Errorf("failed to load profile store (%s): %w", cf.ProfileStore, err)
		}

		newProf := new(prof.VocabProfile)
		{
			content, err := os.ReadFile(profFile)
			if err != nil {
				return fmt.Errorf("failed to read profile file (%s): %w", profFile, err)
			}
			if err := yaml.Unmarshal(content, newProf); err != nil {
				return fmt.Errorf("failed to parse profile file (%s): %w", profFile, err)
			}
		}
		if err := newProf.Verify(); err != nil {
			return fmt.Errorf("%s: %w", profFile, err)
		}

		profName := cf.Profile
		profStore[profName] = newProf
		if err := profStore.Save(cf.ProfileStore); err != nil {
			return fmt.Errorf("failed to save profile store (%s): %w", cf.ProfileStore, err)
		}
		logger.Printf("profile %s is saved to %s", profName, cf.ProfileStore)

		if err := open.WriteSafeFile(filepath.Join(dir, common.ProfileFile), []byte(profName+"\n")); err != nil {
			return fmt.Errorf("failed to write %s: %w", common.ProfileFile, err)
		}
		return nil
	}
}
