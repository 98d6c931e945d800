// Package taxonomy derives taxonomy identity (namespace, version, display
// name) from a parsed filing's metadata. Taxonomy documents are loosely
// structured, so every field is best-effort: resolution never fails, it
// just leaves fields empty.
package taxonomy

import (
	"regexp"
	"strings"

	"github.com/dgallion1/xbrlgest/internal/xbrl"
)

// Info is the resolved taxonomy identity. Empty fields mean "unknown".
type Info struct {
	Namespace   string
	Version     string
	DisplayName string
}

// Name returns the best human-readable taxonomy label: display name, then
// raw namespace, then nothing.
func (i Info) Name() string {
	if i.DisplayName != "" {
		return i.DisplayName
	}
	return i.Namespace
}

var (
	versionDatePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}`)
	entryPointPattern  = regexp.MustCompile(`/([^/]+_entry-point[^/]*\.xsd)`)
)

// Resolver turns document metadata into an Info. The zero Resolver works;
// a registry adds regulator-marker display names.
type Resolver struct {
	registry *Registry
}

// NewResolver returns a resolver using the given regulator registry. A nil
// registry falls back to the built-in entries.
func NewResolver(reg *Registry) *Resolver {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Resolver{registry: reg}
}

// Resolve derives taxonomy identity from a parsed document. Each field is
// resolved independently, first source wins.
func (r *Resolver) Resolve(doc *xbrl.Document) Info {
	var info Info
	if doc == nil {
		return info
	}

	// Namespace: the document's own target namespace, then any loaded
	// schema's target namespace.
	info.Namespace = doc.TargetNamespace
	if info.Namespace == "" {
		for _, ref := range doc.SchemaRefs {
			if ref.TargetNamespace != "" {
				info.Namespace = ref.TargetNamespace
				break
			}
		}
	}

	// Version: a YYYY-MM-DD substring of the namespace. Taxonomy authors
	// version entry points by date almost universally.
	if info.Namespace != "" {
		info.Version = versionDatePattern.FindString(info.Namespace)
	}

	schemaRef := ""
	for _, ref := range doc.SchemaRefs {
		if ref.Href != "" {
			schemaRef = ref.Href
			break
		}
	}

	// With no namespace anywhere, the schemaRef href is the closest thing
	// to a taxonomy identity we have.
	if info.Namespace == "" && schemaRef != "" {
		info.Namespace = schemaRef
		if info.Version == "" {
			info.Version = versionDatePattern.FindString(schemaRef)
		}
	}

	info.DisplayName = r.displayName(info.Namespace, schemaRef)
	return info
}

// displayName derives a short label: the entry-point schema filename when
// present (sfc_entry-point_2016-04-01.xsd -> "sfc v2016-04-01"), otherwise
// a registry match on regulator markers in the namespace.
func (r *Resolver) displayName(namespace, schemaRef string) string {
	if schemaRef != "" {
		if m := entryPointPattern.FindStringSubmatch(schemaRef); m != nil {
			name := strings.TrimSuffix(m[1], ".xsd")
			return strings.Replace(name, "_entry-point_", " v", 1)
		}
	}
	if namespace != "" {
		if name := r.registry.Lookup(namespace); name != "" {
			return name
		}
	}
	return ""
}
