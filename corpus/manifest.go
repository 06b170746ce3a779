package corpus

import (
	"fmt"
	"os"

	"sigs.k8s.io/yaml"
)

// SeedEntry describes one seed file in a replay manifest: the path to feed
// as SYMCC_INPUT_FILE and, optionally, which basic-block site id the author
// expects it to reach — a cheap regression check for "this seed still
// drives the target down the branch it used to."
type SeedEntry struct {
	Path           string `json:"path"`
	ExpectSiteID   *int32 `json:"expectSiteID,omitempty"`
	ExpectPolarity *bool  `json:"expectPolarity,omitempty"`
	Description    string `json:"description,omitempty"`
}

// Manifest is the top-level shape of a corpus.yaml file read by
// symcc-run -manifest, grounded on db's definition.yaml/definition.json
// dual-format config files: a plain struct with json tags, decoded through
// sigs.k8s.io/yaml so either a .yaml or .json manifest round-trips through
// the same reader.
type Manifest struct {
	Seeds []SeedEntry `json:"seeds"`
}

// LoadManifest reads and parses a manifest file at path. sigs.k8s.io/yaml
// converts YAML to JSON before unmarshaling, so the json struct tags above
// apply to both a .yaml and a .json manifest.
func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("corpus: reading manifest %q: %w", path, err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("corpus: parsing manifest %q: %w", path, err)
	}
	for i, s := range m.Seeds {
		if s.Path == "" {
			return nil, fmt.Errorf("corpus: manifest %q: seed %d has no path", path, i)
		}
	}
	return &m, nil
}
