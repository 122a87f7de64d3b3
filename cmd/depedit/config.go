// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/nlplab/depedit-go/internal/xdg"
	"github.com/nlplab/depedit-go/pkg/errutil"
)

// loadSettings merges a depedit.yaml settings file (if present) with the
// run command's flags, flags taking precedence over file values per
// flag (koanf/providers/posflag only overrides a key when its flag was
// explicitly set or the key is otherwise absent).
func loadSettings(settingsPath string, flags *pflag.FlagSet) (*koanf.Koanf, error) {
	k := koanf.New(".")

	if settingsPath == "" {
		if configDir, err := xdg.ConfigDir(); err == nil {
			settingsPath = configDir + "/depedit.yaml"
		}
	}

	if settingsPath != "" {
		if _, err := os.Stat(settingsPath); err == nil {
			if err := k.Load(file.Provider(settingsPath), yaml.Parser()); err != nil {
				return nil, oops.Code(string(errutil.CodeConfigInvalid)).With("path", settingsPath).Wrap(err)
			}
		}
	}

	if err := k.Load(posflag.Provider(flags, ".", k), nil); err != nil {
		return nil, oops.Code(string(errutil.CodeConfigInvalid)).Wrap(err)
	}

	return k, nil
}
