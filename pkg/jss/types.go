package jss

import (
	"net/http"
)

// DataFormat selects how a GET response is returned.
type DataFormat int

const (
	// FormatJSON parses the response into a map keyed by field name.
	FormatJSON DataFormat = iota

	// FormatXML returns the response as an unparsed markup string.
	FormatXML
)

// Response is the raw outcome of an HTTP call. The last Response seen by a
// connection is always retained for inspection, whether or not the call
// succeeded.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Result is the payload of a successful GET. Exactly one of Data and XML is
// populated, matching the requested DataFormat.
type Result struct {
	Data map[string]interface{}
	XML  string
}

// ListItem is one lightweight record from a "list all" query. Every item
// carries at least id and name; some types add extra summary fields.
type ListItem map[string]interface{}

// ID returns the item's numeric id, or 0 if absent.
func (i ListItem) ID() int {
	return intValue(i["id"])
}

// Name returns the item's name, or "" if absent.
func (i ListItem) Name() string {
	name, _ := i["name"].(string)

	return name
}

// intValue converts the JSON representations of an id to int.
func intValue(v interface{}) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}

// ExtendableKind identifies a resource kind that supports user-defined
// extension attributes and therefore a separate definition cache.
type ExtendableKind string

const (
	ExtendableComputers     ExtendableKind = "computers"
	ExtendableMobileDevices ExtendableKind = "mobile_devices"
	ExtendableUsers         ExtendableKind = "users"
)

// ResourceType describes one category of manageable entity. The generic
// object mapper and the list cache consume this interface instead of
// dispatching on concrete types.
type ResourceType interface {
	// ResourcePath is the endpoint below JSSResource, e.g. "computers".
	ResourcePath() string

	// ListKey is the field under which the server nests the collection
	// payload.
	ListKey() string

	// ObjectKey is the field under which the server nests a single
	// instance payload.
	ObjectKey() string

	// RequiredFields are the keys, beyond id and name, that must be
	// present when constructing an object from a raw payload.
	RequiredFields() []string

	// LookupKeys are the identifiers, beyond id and name, usable to fetch
	// a single object, e.g. "serialnumber".
	LookupKeys() []string

	// Creatable reports whether new objects of this type can be created
	// through the API.
	Creatable() bool

	// Extendable names the extension-attribute kind this type carries, or
	// "" when the type has no extension attributes.
	Extendable() ExtendableKind
}

// resourceType is the standard descriptor implementation used by the
// built-in types in resources.go. External packages can provide their own
// ResourceType implementations for endpoints not covered here.
type resourceType struct {
	path       string
	listKey    string
	objectKey  string
	required   []string
	lookups    []string
	creatable  bool
	extendable ExtendableKind
}

func (t resourceType) ResourcePath() string { return t.path }

func (t resourceType) ListKey() string { return t.listKey }

func (t resourceType) ObjectKey() string { return t.objectKey }

func (t resourceType) RequiredFields() []string { return t.required }

func (t resourceType) LookupKeys() []string { return t.lookups }

func (t resourceType) Creatable() bool { return t.creatable }

func (t resourceType) Extendable() ExtendableKind { return t.extendable }

// BaseType is the abstract descriptor. List projections and lookups must be
// invoked on a concrete type; using BaseType fails with
// ErrUnsupportedOperation.
var BaseType ResourceType = resourceType{}
