package site

import (
	_ "embed"
)

// IndexHTML is the greeting page served at the root path.
//
//go:embed static/index.html
var IndexHTML []byte
