package pipeline

import (
	"io"
	"os"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/tavola/pkg/errors"
)

// LoadConfig reads a TOML config file on top of DefaultOptions. Unknown keys
// are rejected so a misspelled option never goes unnoticed.
func LoadConfig(path string) (Options, error) {
	o := DefaultOptions()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return o, errors.New(errors.ErrCodeFileNotFound, "config file %q not found", path)
	}
	md, err := toml.DecodeFile(path, &o)
	if err != nil {
		return o, errors.Wrap(errors.ErrCodeInvalidInput, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		slices.Sort(keys)
		return o, errors.New(errors.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}
	return o, nil
}

// WriteConfig writes o as TOML.
func WriteConfig(w io.Writer, o Options) error {
	return toml.NewEncoder(w).Encode(o)
}
