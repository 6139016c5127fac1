package preview

import (
	"net/url"
	"os"
	"path/filepath"
	"strings"
)

// Asset is a servable payload with its declared content type.
type Asset struct {
	Data        []byte
	ContentType string
}

// Outcome says where a Resolve answer came from.
type Outcome int

const (
	// OutcomeNotFound covers missing files, unreadable files, directories
	// and containment violations alike; callers must not be able to tell
	// them apart.
	OutcomeNotFound Outcome = iota

	// OutcomeEmbedded is a hit in the fixed asset table.
	OutcomeEmbedded

	// OutcomeProject is a file read from the project root.
	OutcomeProject
)

func (o Outcome) String() string {
	switch o {
	case OutcomeEmbedded:
		return "embedded"
	case OutcomeProject:
		return "project"
	default:
		return "not_found"
	}
}

// Resolver maps a request path to an embedded asset, a file inside the
// project root, or nothing. It knows nothing about HTTP; the server layer
// turns its answers into responses.
//
// Lookup order:
//  1. Exact match in the fixed asset table supplied at construction.
//  2. Percent-decoded path joined onto the project root, subject to a
//     containment check so a request can never read outside the root.
type Resolver struct {
	root  string
	table map[string]Asset
}

// NewResolver creates a Resolver for the given project root and embedded
// asset table. The root is canonicalized (absolute, symlinks resolved) once
// here so the containment check compares like with like; "/proj" and
// "/proj-evil" can then never prefix-match each other, and a symlinked root
// still contains its own files.
func NewResolver(root string, table map[string]Asset) (*Resolver, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	if table == nil {
		table = map[string]Asset{}
	}
	return &Resolver{root: abs, table: table}, nil
}

// Root returns the canonicalized project root.
func (r *Resolver) Root() string {
	return r.root
}

// Resolve maps a URL path to an asset. The empty path and "index.html" are
// the same document. OutcomeNotFound means 404; the caller cannot tell a
// traversal attempt apart from a genuinely missing file, which is the point.
func (r *Resolver) Resolve(urlPath string) (Asset, Outcome) {
	rel := strings.TrimPrefix(urlPath, "/")
	if rel == "" {
		rel = "index.html"
	}

	if a, ok := r.table[rel]; ok {
		return a, OutcomeEmbedded
	}

	// Project filenames may be non-ASCII; browsers percent-encode them.
	// A malformed encoding falls back to the literal path.
	decoded, err := url.PathUnescape(rel)
	if err != nil {
		decoded = rel
	}

	// NUL can arrive via %00; backslashes are never valid request separators.
	if strings.IndexByte(decoded, 0) != -1 || strings.Contains(decoded, "\\") {
		return Asset{}, OutcomeNotFound
	}

	full := filepath.Join(r.root, filepath.FromSlash(decoded))

	// Canonicalize before the containment check. EvalSymlinks fails for
	// paths that do not exist, which is already a not-found.
	resolved, err := filepath.EvalSymlinks(full)
	if err != nil {
		return Asset{}, OutcomeNotFound
	}
	if !containedIn(resolved, r.root) {
		return Asset{}, OutcomeNotFound
	}

	info, err := os.Stat(resolved)
	if err != nil || info.IsDir() {
		return Asset{}, OutcomeNotFound
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return Asset{}, OutcomeNotFound
	}

	return Asset{Data: data, ContentType: mimeTypeFor(decoded)}, OutcomeProject
}

// containedIn reports whether path equals dir or lives under it. Both
// arguments must already be absolute and canonical. The separator is
// appended before the prefix comparison so "/proj-evil" does not match
// "/proj".
func containedIn(path, dir string) bool {
	path = filepath.Clean(path)
	dir = filepath.Clean(dir)
	if path == dir {
		return true
	}
	if !strings.HasSuffix(dir, string(os.PathSeparator)) {
		dir += string(os.PathSeparator)
	}
	return strings.HasPrefix(path, dir)
}

// mimeTypeFor derives a content type from the file extension. The table is
// deliberately small: these are the types a MicroES project actually ships.
// Everything else is served as an opaque binary.
func mimeTypeFor(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".html":
		return "text/html"
	case ".js":
		return "application/javascript"
	case ".wasm":
		return "application/wasm"
	case ".json":
		return "application/json"
	case ".css":
		return "text/css"
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
