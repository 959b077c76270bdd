package timer

import (
	"errors"

	"github.com/Veraticus/stretchia/pkg/interfaces"
	"github.com/Veraticus/stretchia/pkg/types"
)

// MultiRenderer updates every renderer and joins their errors.
type MultiRenderer []interfaces.Renderer

// SetIndicator implements interfaces.Renderer.
func (m MultiRenderer) SetIndicator(stage types.Stage, afk bool) error {
	var errs []error
	for _, r := range m {
		if r == nil {
			continue
		}
		if err := r.SetIndicator(stage, afk); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

var _ interfaces.Renderer = MultiRenderer(nil)
