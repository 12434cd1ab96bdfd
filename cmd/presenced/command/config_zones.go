package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-presence/internal/presence"
	"github.com/pixil98/go-presence/internal/storage"
)

type ZoneConfig struct {
	AssetPath string `json:"asset_path"`
}

func (zc *ZoneConfig) validate() error {
	el := errors.NewErrorList()

	if zc.AssetPath == "" {
		el.Add(fmt.Errorf("zones: asset_path is required"))
	} else if _, err := os.Stat(zc.AssetPath); err != nil {
		el.Add(fmt.Errorf("zones: invalid asset_path %q: %w", zc.AssetPath, err))
	}

	return el.Err()
}

// LoadSpecs reads every zone definition under the asset path, keyed by zone
// name.
func (zc *ZoneConfig) LoadSpecs() (map[string]*presence.ZoneSpec, error) {
	store, err := storage.NewFileStore[*presence.ZoneSpec](zc.AssetPath)
	if err != nil {
		return nil, fmt.Errorf("loading zone definitions: %w", err)
	}
	return store.GetAll(), nil
}
