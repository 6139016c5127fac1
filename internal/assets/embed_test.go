package assets

import (
	"bytes"
	"strings"
	"testing"
)

func TestTable_Complete(t *testing.T) {
	table := Table()

	want := map[string]string{
		"index.html":         "text/html",
		"wasm/esengine.js":   "application/javascript",
		"wasm/esengine.wasm": "application/wasm",
		"sdk/index.js":       "application/javascript",
		"sdk/index.d.ts":     "application/typescript",
		"sdk/wasm.js":        "application/javascript",
		"wasm/physics.js":    "application/javascript",
		"wasm/physics.wasm":  "application/wasm",
	}

	if len(table) != len(want) {
		t.Errorf("table has %d entries, want %d", len(table), len(want))
	}
	for path, contentType := range want {
		asset, ok := table[path]
		if !ok {
			t.Errorf("table missing %q", path)
			continue
		}
		if asset.ContentType != contentType {
			t.Errorf("table[%q].ContentType = %q, want %q", path, asset.ContentType, contentType)
		}
		if len(asset.Data) == 0 {
			t.Errorf("table[%q] has no data", path)
		}
	}
}

func TestTable_FreshMapPerCall(t *testing.T) {
	a := Table()
	a["extra"] = a["index.html"]

	if _, ok := Table()["extra"]; ok {
		t.Error("mutating one table leaked into the next")
	}
}

func TestWASMBinariesHaveMagic(t *testing.T) {
	magic := []byte{0x00, 0x61, 0x73, 0x6d}
	for name, data := range map[string][]byte{
		"esengine.wasm": EngineWASM,
		"physics.wasm":  PhysicsWASM,
	} {
		if len(data) < 8 || !bytes.HasPrefix(data, magic) {
			t.Errorf("%s is not a wasm module", name)
		}
	}
}

func TestPreviewDocumentWiresReload(t *testing.T) {
	html := string(PreviewHTML)

	if !strings.Contains(html, "/sse-reload") {
		t.Error("preview document does not subscribe to the reload stream")
	}
	if !strings.Contains(html, "location.reload") {
		t.Error("preview document never reloads itself")
	}
	if !strings.Contains(html, "/wasm/esengine.js") {
		t.Error("preview document does not load the engine")
	}
}
