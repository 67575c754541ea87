package dagtype

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/json"
)

// JSONFileMaterializer persists any serializable value as a JSON document at
// the path given by the materialization spec. It is the stock materializer
// for types that do not need a custom persisted representation.
func JSONFileMaterializer(ctx context.Context, v cty.Value, spec cty.Value) (*Materialization, error) {
	if spec.IsNull() || spec.Type() != cty.String {
		return nil, fmt.Errorf("json file materializer requires a string path spec, got %s", spec.Type().FriendlyName())
	}
	path := spec.AsString()

	data, err := json.Marshal(v, v.Type())
	if err != nil {
		return nil, fmt.Errorf("serializing value: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating target directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", path, err)
	}

	return &Materialization{
		Label:       "json_file",
		Description: "Value serialized as a JSON document.",
		Path:        path,
	}, nil
}
