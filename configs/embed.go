package configs

import (
	_ "embed"
)

// Words is the default spell-check word list, one lower-case word per line.
//
//go:embed words.txt
var Words []byte
