package iodwc

import (
	"errors"
	"log/slog"
	"os"

	"github.com/gnames/gn"
	"github.com/gnames/gnbackbone/pkg/backbone"
	"gopkg.in/yaml.v3"
)

// LoadFilter reads a rank-keyed allow-list from a YAML file:
//
//	family:
//	  - Fringillidae
//	  - Plantaginaceae
//
// An empty path returns a nil filter that allows everything. Unknown
// ranks are ignored with a warning.
func LoadFilter(path string) (backbone.Filter, error) {
	if path == "" {
		return nil, nil
	}

	bs, err := os.ReadFile(path)
	if err != nil {
		return nil, FilterFileError(path, err)
	}
	return ParseFilter(path, bs)
}

// ParseFilter decodes YAML allow-list data. The path is used in
// messages only.
func ParseFilter(path string, data []byte) (backbone.Filter, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, FilterFileError(path, err)
	}
	if len(raw) == 0 {
		return nil, FilterFileError(path, errors.New("no ranks in filter"))
	}

	res, unknown := backbone.NewFilter(raw)
	for _, v := range unknown {
		slog.Warn("Unknown rank in filter file", "path", path, "rank", v)
		gn.Warn("Filter file has unknown rank <em>%s</em>, ignoring it", v)
	}
	if len(res) == 0 {
		return nil, FilterFileError(path, errors.New("no known ranks in filter"))
	}

	slog.Info("Loaded filter", "path", path, "ranks", len(res))
	return res, nil
}
