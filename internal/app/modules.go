package app

import (
	"github.com/modkit/brickflow/bricks/envreader"
	"github.com/modkit/brickflow/bricks/foreach"
	"github.com/modkit/brickflow/bricks/httprequest"
	"github.com/modkit/brickflow/bricks/identity"
	"github.com/modkit/brickflow/bricks/ifelse"
	"github.com/modkit/brickflow/bricks/logbrick"
	"github.com/modkit/brickflow/bricks/renderer"
	"github.com/modkit/brickflow/bricks/socketio"
	"github.com/modkit/brickflow/bricks/template"
	"github.com/modkit/brickflow/bricks/tryexcept"
	"github.com/modkit/brickflow/internal/registry"
)

// coreModules is the definitive list of all brick modules that are compiled
// into the brickflow binary.
var coreModules = []registry.Module{
	&identity.Module{},
	&template.Module{},
	&ifelse.Module{},
	&foreach.Module{},
	&tryexcept.Module{},
	&renderer.Module{},
	&httprequest.Module{},
	&socketio.Module{},
	&envreader.Module{},
	&logbrick.Module{},
}
