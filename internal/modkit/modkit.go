package modkit

import "newsletter/internal/modkit/module"

// Module is what api.Mount wires: routes, ports and a name for logs
type Module = module.Module
