// Package hcl loads and translates HCL manifests and pipeline files into the
// format-agnostic config model.
package hcl

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/zkan/dagster/internal/config"
	"github.com/zkan/dagster/internal/ctxlog"
	"github.com/zkan/dagster/internal/schema"
)

// Loader reads .hcl files and produces a config.Model.
type Loader struct{}

// NewLoader creates a new HCL configuration loader.
func NewLoader() *Loader {
	return &Loader{}
}

// fileRoot decodes all possible top-level blocks from any file. Manifests
// and pipeline steps may be mixed freely across files.
type fileRoot struct {
	Solids    []*schema.SolidDefinition `hcl:"solid,block"`
	Types     []*schema.TypeDefinition  `hcl:"type,block"`
	Steps     []*schema.Step            `hcl:"step,block"`
	Schedules []*schema.Schedule        `hcl:"schedule,block"`
	Remain    hcl.Body                  `hcl:",remain"`
}

// Load orchestrates the entire HCL configuration loading process. It is
// agnostic to the origin of the paths and parses any valid block from any file.
func (l *Loader) Load(ctx context.Context, paths ...string) (*config.Model, error) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("HCL loader started.", "path_count", len(paths))

	model := &config.Model{
		Solids:   make(map[string]*config.SolidDefinition),
		Types:    make(map[string]*config.TypeDefinition),
		Pipeline: &config.Pipeline{},
	}

	hclFiles, err := findAllHCLFiles(paths)
	if err != nil {
		return nil, err
	}
	logger.Debug("Discovered HCL files.", "count", len(hclFiles))

	parser := hclparse.NewParser()

	for _, file := range hclFiles {
		hclFile, diags := parser.ParseHCLFile(file)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to parse HCL file %s: %w", file, diags)
		}

		var root fileRoot
		diags = gohcl.DecodeBody(hclFile.Body, nil, &root)
		if diags.HasErrors() {
			return nil, fmt.Errorf("failed to decode HCL file %s: %w", file, diags)
		}

		for _, td := range root.Types {
			def, err := l.translateTypeDefinition(ctx, td)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			if _, exists := model.Types[def.Name]; exists {
				return nil, fmt.Errorf("in %s: type %q declared more than once", file, def.Name)
			}
			model.Types[def.Name] = def
		}
		for _, sd := range root.Solids {
			def, err := l.translateSolidDefinition(ctx, sd)
			if err != nil {
				return nil, fmt.Errorf("in %s: %w", file, err)
			}
			if _, exists := model.Solids[def.Type]; exists {
				return nil, fmt.Errorf("in %s: solid %q declared more than once", file, def.Type)
			}
			model.Solids[def.Type] = def
		}
		for _, step := range root.Steps {
			model.Pipeline.Steps = append(model.Pipeline.Steps, l.translateStep(step))
		}
		for _, sched := range root.Schedules {
			model.Schedules = append(model.Schedules, &config.ScheduleDefinition{
				Name:            sched.Name,
				CronSchedule:    sched.CronSchedule,
				Pipeline:        sched.Pipeline,
				EnvironmentVars: sched.EnvironmentVars,
			})
		}
	}

	if err := validateTypeReferences(model); err != nil {
		return nil, err
	}

	logger.Debug("HCL loading complete.",
		"solids", len(model.Solids), "types", len(model.Types),
		"steps", len(model.Pipeline.Steps), "schedules", len(model.Schedules))
	return model, nil
}

// validateTypeReferences ensures every type name used by a solid manifest
// resolves to a declared or builtin type. Catching this at load time keeps
// type errors out of the execution path.
func validateTypeReferences(model *config.Model) error {
	known := func(name string) bool {
		switch name {
		case "any", "nothing", "string", "number", "bool":
			return true
		}
		_, ok := model.Types[name]
		return ok
	}
	for _, solid := range model.Solids {
		for _, in := range solid.Inputs {
			if !known(in.TypeName) {
				return fmt.Errorf("solid %q: input %q references undeclared type %q", solid.Type, in.Name, in.TypeName)
			}
			if in.TypeName == "nothing" && in.Default != nil {
				return fmt.Errorf("solid %q: input %q has type 'nothing' and cannot declare a default", solid.Type, in.Name)
			}
		}
		for _, out := range solid.Outputs {
			if !known(out.TypeName) {
				return fmt.Errorf("solid %q: output %q references undeclared type %q", solid.Type, out.Name, out.TypeName)
			}
		}
	}
	return nil
}

// findAllHCLFiles walks all given paths and returns a flat list of all .hcl files found.
func findAllHCLFiles(paths []string) ([]string, error) {
	var allFiles []string
	seen := make(map[string]struct{})

	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue // It's not an error if a configured path doesn't exist.
			}
			return nil, fmt.Errorf("error accessing path %s: %w", path, err)
		}

		if info.IsDir() {
			err := filepath.Walk(path, func(p string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if !info.IsDir() && filepath.Ext(p) == ".hcl" {
					if _, wasSeen := seen[p]; !wasSeen {
						allFiles = append(allFiles, p)
						seen[p] = struct{}{}
					}
				}
				return nil
			})
			if err != nil {
				return nil, err
			}
		} else if filepath.Ext(path) == ".hcl" {
			if _, wasSeen := seen[path]; !wasSeen {
				allFiles = append(allFiles, path)
				seen[path] = struct{}{}
			}
		}
	}
	return allFiles, nil
}
