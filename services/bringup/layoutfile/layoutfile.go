// Package layoutfile reads and writes board layouts as YAML for host tools.
// It is never linked into firmware.
package layoutfile

import (
	"os"

	"gopkg.in/yaml.v2"

	"gfxpack-go/errcode"
	"gfxpack-go/services/bringup"
)

// Parse decodes a layout. Fields absent from data keep their DefaultLayout
// values; unknown fields are rejected. The result is validated.
func Parse(data []byte) (bringup.Layout, error) {
	l := bringup.DefaultLayout()
	if err := yaml.UnmarshalStrict(data, &l); err != nil {
		return bringup.Layout{}, errcode.Wrap(errcode.InvalidParams, "layoutfile.parse", err)
	}
	if err := l.Validate(); err != nil {
		return bringup.Layout{}, err
	}
	return l, nil
}

// Load reads and parses the file at path.
func Load(path string) (bringup.Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return bringup.Layout{}, err
	}
	return Parse(data)
}

// Marshal encodes l. It does not validate.
func Marshal(l bringup.Layout) ([]byte, error) {
	return yaml.Marshal(l)
}
