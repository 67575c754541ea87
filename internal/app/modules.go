package app

import (
	"github.com/zkan/dagster/internal/registry"
	"github.com/zkan/dagster/solids/emit"
	"github.com/zkan/dagster/solids/http_request"
	"github.com/zkan/dagster/solids/print"
)

// coreModules is the definitive list of all solid modules that are compiled
// into the dagster binary.
var coreModules = []registry.Module{
	&emit.Module{},
	&print.Module{},
	&http_request.Module{},
}
