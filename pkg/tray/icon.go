package tray

import _ "embed"

//go:embed icons/float.png
var floatIcon []byte

//go:embed icons/bsp.png
var bspIcon []byte
