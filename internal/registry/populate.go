package registry

import (
	"context"
	"fmt"

	"github.com/hashicorp/go-multierror"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/dagtype"
)

// PopulateFromModel copies the loaded solid definitions into the registry and
// defines every user-declared type, binding its lifecycle hook names to the
// registered Go functions.
func (r *Registry) PopulateFromModel(ctx context.Context, model *config.Model) error {
	logger := ctxlog.FromContext(ctx)
	var errs *multierror.Error

	for name, td := range model.Types {
		t := &dagtype.Type{
			Name:         td.Name,
			Description:  td.Description,
			ConfigSchema: td.Base,
		}
		if td.Lifecycle != nil {
			if hook := td.Lifecycle.Check; hook != "" {
				fn, ok := r.CheckRegistry[hook]
				if !ok {
					errs = multierror.Append(errs, fmt.Errorf("type %q: check handler %q not registered", name, hook))
					continue
				}
				t.Check = fn
			}
			if hook := td.Lifecycle.Loader; hook != "" {
				fn, ok := r.LoaderRegistry[hook]
				if !ok {
					errs = multierror.Append(errs, fmt.Errorf("type %q: loader handler %q not registered", name, hook))
					continue
				}
				t.Loader = fn
			}
			if hook := td.Lifecycle.Materializer; hook != "" {
				fn, ok := r.MaterializerRegistry[hook]
				if !ok {
					errs = multierror.Append(errs, fmt.Errorf("type %q: materializer handler %q not registered", name, hook))
					continue
				}
				t.Materializer = fn
			}
		}
		if err := r.Types.Define(t); err != nil {
			errs = multierror.Append(errs, err)
			continue
		}
		logger.Debug("Defined user type from manifest.", "type", name)
	}

	for key, val := range model.Solids {
		r.DefinitionRegistry[key] = val
	}

	return errs.ErrorOrNil()
}
