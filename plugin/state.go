package plugin

import (
	"encoding/json"
	"fmt"

	"github.com/cwbudde/algo-wasabi/dsp/params"
	"github.com/cwbudde/algo-wasabi/dsp/preset"
)

// stateVersion is the serialization format version written by Save.
const stateVersion = 1

// stateBlob is the serialized session state: the selected program and
// every parameter value keyed by its stable ID.
type stateBlob struct {
	Version int                `json:"version"`
	Program int                `json:"program"`
	Params  map[string]float64 `json:"params"`
}

// Save serializes the selected program and all parameter values,
// including bypass, as JSON. The blob is independent of the session
// lifecycle; it can be taken before Prepare or after Release.
func (p *Processor) Save() ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	blob := stateBlob{
		Version: stateVersion,
		Program: p.program,
		Params:  make(map[string]float64, len(params.Descriptors())),
	}

	for _, d := range params.Descriptors() {
		blob.Params[d.ID] = p.store.Get(d.ID)
	}

	return json.Marshal(blob)
}

// Load restores state written by Save. The stored program index becomes
// current without re-applying the factory preset, since the explicit
// parameter values follow. Unknown parameter IDs are ignored for forward
// compatibility; stored values clamp to the declared ranges.
func (p *Processor) Load(data []byte) error {
	var blob stateBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return fmt.Errorf("plugin: parse state: %w", err)
	}

	if blob.Version != stateVersion {
		return fmt.Errorf("plugin: unsupported state version %d", blob.Version)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.program = preset.ClampIndex(blob.Program)

	for _, d := range params.Descriptors() {
		value, ok := blob.Params[d.ID]
		if !ok {
			continue
		}

		if err := p.store.Set(d.ID, value); err != nil {
			return fmt.Errorf("plugin: restore %s: %w", d.ID, err)
		}
	}

	return nil
}
