package shaderfx

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/gekko3d/shaderfx/rt/params"
	"gopkg.in/yaml.v3"
)

// Preset maps stage names to parameter patches.
//
//	fluid:
//	  density_dissipation: 0.97
//	  fluid_color: "#ff8800"
//	ripple:
//	  frequency: 0.02
type Preset map[string]params.Patch

func LoadPreset(r io.Reader) (Preset, error) {
	var raw map[string]map[string]any
	if err := yaml.NewDecoder(r).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return Preset{}, nil
		}
		return nil, fmt.Errorf("failed to decode preset: %w", err)
	}
	p := make(Preset, len(raw))
	for name, patch := range raw {
		p[name] = params.Patch(patch)
	}
	return p, nil
}

func LoadPresetFile(path string) (Preset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open preset: %w", err)
	}
	defer f.Close()
	return LoadPreset(f)
}

// SavePreset writes p as YAML. Only plain values (numbers, strings, lists)
// survive a round trip.
func SavePreset(w io.Writer, p Preset) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("failed to encode preset: %w", err)
	}
	return enc.Close()
}
