// Package assets bundles the prebuilt MicroES runtime and SDK artifacts into
// the editor binary. The files under dist/ are produced by the engine build
// and checked in; this package only gives them stable names and aggregates
// them into the fixed lookup table the preview server serves from memory.
package assets

import (
	_ "embed"

	"github.com/esengine/microes/pkg/preview"
)

// PreviewHTML is the preview document served at "/" and "/index.html".
//
//go:embed dist/preview.html
var PreviewHTML []byte

// EngineJS is the engine wasm loader script.
//
//go:embed dist/wasm/esengine.js
var EngineJS []byte

// EngineWASM is the engine runtime binary.
//
//go:embed dist/wasm/esengine.wasm
var EngineWASM []byte

// SDKJS is the project-facing SDK (ESM).
//
//go:embed dist/sdk/index.js
var SDKJS []byte

// SDKTypes is the SDK type declarations, served so editors inside the
// preview (and the shell's script editor) can fetch them.
//
//go:embed dist/sdk/index.d.ts
var SDKTypes []byte

// SDKWasmJS is the SDK's wasm memory bridge.
//
//go:embed dist/sdk/wasm.js
var SDKWasmJS []byte

// PhysicsJS is the physics plugin loader script.
//
//go:embed dist/wasm/physics.js
var PhysicsJS []byte

// PhysicsWASM is the physics plugin binary.
//
//go:embed dist/wasm/physics.wasm
var PhysicsWASM []byte

// Table returns the fixed path→blob table the preview server consults before
// touching the project directory. The map is rebuilt on each call so callers
// can add entries without affecting each other.
func Table() map[string]preview.Asset {
	return map[string]preview.Asset{
		"index.html":         {Data: PreviewHTML, ContentType: "text/html"},
		"wasm/esengine.js":   {Data: EngineJS, ContentType: "application/javascript"},
		"wasm/esengine.wasm": {Data: EngineWASM, ContentType: "application/wasm"},
		"sdk/index.js":       {Data: SDKJS, ContentType: "application/javascript"},
		"sdk/index.d.ts":     {Data: SDKTypes, ContentType: "application/typescript"},
		"sdk/wasm.js":        {Data: SDKWasmJS, ContentType: "application/javascript"},
		"wasm/physics.js":    {Data: PhysicsJS, ContentType: "application/javascript"},
		"wasm/physics.wasm":  {Data: PhysicsWASM, ContentType: "application/wasm"},
	}
}
