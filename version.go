package teevee

import _ "embed"

// Version is the release of the module and the CLI. It may carry a trailing
// newline.
//
//go:embed VERSION
var Version string
