package jss

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// ObjectState is the lifecycle state of an Object.
type ObjectState int

const (
	// StateNew means the object is not yet on the server.
	StateNew ObjectState = iota

	// StatePersisted means the object has a server-confirmed id.
	StatePersisted
)

// Object is the generic envelope around one instance of any resource type.
// It tracks whether the object exists remotely, whether local changes are
// pending, and the payload snapshot of last-known server state. Every Object
// belongs to the Connection it was fetched or created through and uses that
// connection for all further calls.
type Object struct {
	conn  Connection
	rtype ResourceType

	id          int
	name        string
	site        string
	persisted   bool
	needsUpdate bool
	restPath    string

	// data is the flattened attribute mapping; general is the explicit
	// sub-section map when the resource uses sectioned payloads, nil
	// otherwise. Normalization happens once at construction so nothing
	// downstream branches on payload shape.
	data    map[string]interface{}
	general map[string]interface{}
}

// NewObjectFromData wraps a raw payload that was already fetched. The
// payload is still validated: every field the type declares required must be
// present (construction fails with ErrInvalidData naming the missing keys),
// and the id must appear in the type's current id listing (ErrNoSuchItem
// otherwise). Empty-string values are stripped, since the server sends ""
// for "no value".
func NewObjectFromData(ctx context.Context, conn Connection, t ResourceType, data map[string]interface{}) (*Object, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	obj, err := buildObject(conn, t, data)
	if err != nil {
		return nil, err
	}

	ids, err := AllIDs(ctx, conn, t, false)
	if err != nil {
		return nil, err
	}

	if !containsInt(ids, obj.id) {
		return nil, fmt.Errorf("%w: no %s with id %d on %s", ErrNoSuchItem, t.ObjectKey(), obj.id, conn.Name())
	}

	return obj, nil
}

// NewObject starts a brand-new in-memory object pending creation. The type
// must support creation, the name is required, and the name must be unique
// among existing objects of the type.
func NewObject(ctx context.Context, conn Connection, t ResourceType, name string) (*Object, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	if !t.Creatable() {
		return nil, fmt.Errorf("%w: %s objects cannot be created through the API", ErrUnsupportedOperation, t.ObjectKey())
	}

	if name == "" {
		return nil, fmt.Errorf("%w: a name is required to create a %s", ErrMissingData, t.ObjectKey())
	}

	names, err := AllNames(ctx, conn, t, false)
	if err != nil {
		return nil, err
	}

	for _, existing := range names {
		if existing == name {
			return nil, fmt.Errorf("%w: a %s named %q already exists on %s", ErrAlreadyExists, t.ObjectKey(), name, conn.Name())
		}
	}

	obj := &Object{
		conn:        conn,
		rtype:       t,
		name:        name,
		needsUpdate: true,
		data:        map[string]interface{}{"name": name},
	}
	obj.computePath()

	return obj, nil
}

// FetchObject looks an object up on the server. The lookup map's keys are
// intersected with the type's allowed lookup keys (id, name, plus any
// type-specific alternates); construction fails with ErrMissingData when
// none match, and with ErrNoSuchItem when the server reports not-found.
func FetchObject(ctx context.Context, conn Connection, t ResourceType, lookup map[string]interface{}) (*Object, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	key, value, ok := pickLookupKey(t, lookup)
	if !ok {
		allowed := append([]string{"id", "name"}, t.LookupKeys()...)

		return nil, fmt.Errorf("%w: lookup requires one of: %s", ErrMissingData, strings.Join(allowed, ", "))
	}

	path := fmt.Sprintf("%s/%s/%s", t.ResourcePath(), key, url.PathEscape(lookupString(value)))

	res, err := conn.Get(ctx, path, FormatJSON)
	if err != nil {
		if errors.Is(err, ErrResourceNotFound) {
			return nil, fmt.Errorf("%w: no %s matching %s %v on %s", ErrNoSuchItem, t.ObjectKey(), key, value, conn.Name())
		}

		return nil, err
	}

	return buildObject(conn, t, res.Data)
}

// All returns the cached list of all objects of type t, fetching it when the
// cache is empty or refresh is set. Fails with ErrUnsupportedOperation when
// called on the abstract base type.
func All(ctx context.Context, conn Connection, t ResourceType, refresh bool) ([]ListItem, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	return conn.Lists().List(ctx, t, refresh, listFetcher(conn))
}

// AllIDs projects All to just the id field, preserving order.
func AllIDs(ctx context.Context, conn Connection, t ResourceType, refresh bool) ([]int, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	return conn.Lists().IDs(ctx, t, refresh, listFetcher(conn))
}

// AllNames projects All to just the name field, preserving order.
func AllNames(ctx context.Context, conn Connection, t ResourceType, refresh bool) ([]string, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	return conn.Lists().Names(ctx, t, refresh, listFetcher(conn))
}

// MapAllIDsTo builds an id→field mapping from the (possibly refreshed) list.
func MapAllIDsTo(ctx context.Context, conn Connection, t ResourceType, field string, refresh bool) (map[int]interface{}, error) {
	if err := checkConcrete(t); err != nil {
		return nil, err
	}

	return conn.Lists().Map(ctx, t, field, refresh, listFetcher(conn))
}

// listFetcher performs the live list query for the cache.
func listFetcher(conn Connection) ListFetcher {
	return func(ctx context.Context, t ResourceType) ([]ListItem, error) {
		res, err := conn.Get(ctx, t.ResourcePath(), FormatJSON)
		if err != nil {
			return nil, err
		}

		raw, ok := res.Data[t.ListKey()].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: list response missing %q collection", ErrInvalidData, t.ListKey())
		}

		items := make([]ListItem, 0, len(raw))

		for _, entry := range raw {
			fields, ok := entry.(map[string]interface{})
			if !ok {
				return nil, fmt.Errorf("%w: malformed entry in %q collection", ErrInvalidData, t.ListKey())
			}

			items = append(items, ListItem(fields))
		}

		return items, nil
	}
}

// Type returns the object's resource type descriptor.
func (o *Object) Type() ResourceType {
	return o.rtype
}

// Connection returns the session this object belongs to.
func (o *Object) Connection() Connection {
	return o.conn
}

// ID returns the numeric id, or 0 when the object is not yet persisted.
func (o *Object) ID() int {
	return o.id
}

// Name returns the object's name.
func (o *Object) Name() string {
	return o.name
}

// Site returns the site name, when the payload carried one.
func (o *Object) Site() string {
	return o.site
}

// State reports the lifecycle state.
func (o *Object) State() ObjectState {
	if o.persisted {
		return StatePersisted
	}

	return StateNew
}

// Persisted reports whether the object exists on the server.
func (o *Object) Persisted() bool {
	return o.persisted
}

// NeedsUpdate reports whether local changes are pending a Save.
func (o *Object) NeedsUpdate() bool {
	return o.needsUpdate
}

// RESTPath is the object's resource path: id-based when persisted,
// url-escaped-name-based when new.
func (o *Object) RESTPath() string {
	return o.restPath
}

// Data is the flattened attribute snapshot of last-known server state.
func (o *Object) Data() map[string]interface{} {
	return o.data
}

// General is the explicit sub-section map for sectioned payloads, nil for
// flat resources.
func (o *Object) General() map[string]interface{} {
	return o.general
}

// Get returns one attribute from the flattened snapshot.
func (o *Object) Get(field string) interface{} {
	return o.data[field]
}

// Set stages a local attribute change and marks the object update-pending.
func (o *Object) Set(field string, value interface{}) {
	o.data[field] = value
	if o.general != nil {
		o.general[field] = value
	}

	if field == "name" {
		if name, ok := value.(string); ok {
			o.name = name
			if !o.persisted {
				o.computePath()
			}
		}
	}

	o.needsUpdate = true
}

// Save writes the object to the server: POST when new, PUT when persisted.
// On a successful create the server-assigned id is adopted, the REST path
// becomes id-based, and the object flips to the persisted state. The
// connection's cached list for this type is flushed either way, since it no
// longer reflects the server.
func (o *Object) Save(ctx context.Context) (int, error) {
	payload := o.wireRepresentation()

	if o.persisted {
		if _, err := o.conn.Put(ctx, o.restPath, payload); err != nil {
			return 0, err
		}

		o.needsUpdate = false
		o.conn.FlushTypeCache(o.rtype)

		return o.id, nil
	}

	body, err := o.conn.Post(ctx, o.restPath, payload)
	if err != nil {
		return 0, err
	}

	id, err := parseCreatedID(body)
	if err != nil {
		return 0, err
	}

	o.id = id
	o.persisted = true
	o.needsUpdate = false
	o.computePath()
	o.conn.FlushTypeCache(o.rtype)

	return o.id, nil
}

// Delete removes the object from the server. A no-op when the object is not
// persisted. On success the in-memory instance is demoted back to the new
// state: id cleared, path name-based, update pending.
func (o *Object) Delete(ctx context.Context) error {
	if !o.persisted {
		return nil
	}

	if _, err := o.conn.Delete(ctx, o.restPath); err != nil {
		return err
	}

	o.id = 0
	o.persisted = false
	o.needsUpdate = true
	delete(o.data, "id")

	if o.general != nil {
		delete(o.general, "id")
	}

	o.computePath()
	o.conn.FlushTypeCache(o.rtype)

	return nil
}

// buildObject normalizes and validates a raw payload into an Object.
func buildObject(conn Connection, t ResourceType, data map[string]interface{}) (*Object, error) {
	flat, general := normalizePayload(t, data)

	var missing []string

	for _, field := range t.RequiredFields() {
		if _, ok := flat[field]; !ok {
			missing = append(missing, field)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s payload missing required fields: %s",
			ErrInvalidData, t.ObjectKey(), strings.Join(missing, ", "))
	}

	obj := &Object{
		conn:    conn,
		rtype:   t,
		data:    flat,
		general: general,
		id:      intValue(flat["id"]),
	}

	obj.name, _ = flat["name"].(string)

	if site, ok := flat["site"].(map[string]interface{}); ok {
		obj.site, _ = site["name"].(string)
	} else if site, ok := flat["site"].(string); ok {
		obj.site = site
	}

	if obj.id != 0 {
		obj.persisted = true
	} else {
		obj.needsUpdate = true
	}

	obj.computePath()

	return obj, nil
}

// normalizePayload unwraps the object key, strips empty-string values, and
// produces the flat view plus the general sub-section.
func normalizePayload(t ResourceType, data map[string]interface{}) (map[string]interface{}, map[string]interface{}) {
	if inner, ok := data[t.ObjectKey()].(map[string]interface{}); ok {
		data = inner
	}

	flat := make(map[string]interface{}, len(data))

	var general map[string]interface{}

	if section, ok := data["general"].(map[string]interface{}); ok {
		general = make(map[string]interface{}, len(section))

		for key, value := range section {
			if isEmptyString(value) {
				continue
			}

			general[key] = value
			flat[key] = value
		}
	}

	for key, value := range data {
		if key == "general" || isEmptyString(value) {
			continue
		}

		if _, taken := flat[key]; taken {
			continue
		}

		flat[key] = value
	}

	return flat, general
}

func (o *Object) computePath() {
	if o.persisted {
		o.restPath = fmt.Sprintf("%s/id/%d", o.rtype.ResourcePath(), o.id)

		return
	}

	o.restPath = fmt.Sprintf("%s/name/%s", o.rtype.ResourcePath(), url.PathEscape(o.name))
}

// wireRepresentation renders the XML body for create and update calls.
// Scalar attributes only; typed wrappers extend the payload before saving
// when a resource needs nested sections.
func (o *Object) wireRepresentation() string {
	var b strings.Builder

	b.WriteString("<" + o.rtype.ObjectKey() + ">")

	if o.general != nil {
		b.WriteString("<general>")
		writeScalarFields(&b, o.general)
		b.WriteString("</general>")

		for _, key := range sortedScalarKeys(o.data) {
			if _, inGeneral := o.general[key]; inGeneral || key == "id" {
				continue
			}

			writeElement(&b, key, o.data[key])
		}
	} else {
		writeScalarFields(&b, o.data)
	}

	b.WriteString("</" + o.rtype.ObjectKey() + ">")

	return b.String()
}

func writeScalarFields(b *strings.Builder, fields map[string]interface{}) {
	for _, key := range sortedScalarKeys(fields) {
		if key == "id" {
			continue
		}

		writeElement(b, key, fields[key])
	}
}

// name sorts first so the payload stays readable; the server does not care
// about element order.
func sortedScalarKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))

	for key, value := range fields {
		if isScalar(value) {
			keys = append(keys, key)
		}
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i] == "name" {
			return true
		}

		if keys[j] == "name" {
			return false
		}

		return keys[i] < keys[j]
	})

	return keys
}

func writeElement(b *strings.Builder, key string, value interface{}) {
	b.WriteString("<" + key + ">")
	_ = xml.EscapeText(b, []byte(scalarString(value)))
	b.WriteString("</" + key + ">")
}

func isScalar(v interface{}) bool {
	switch v.(type) {
	case string, bool, int, int64, float64:
		return true
	default:
		return false
	}
}

func scalarString(v interface{}) string {
	switch value := v.(type) {
	case string:
		return value
	case bool:
		return strconv.FormatBool(value)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case float64:
		if value == float64(int64(value)) {
			return strconv.FormatInt(int64(value), 10)
		}

		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", value)
	}
}

func isEmptyString(v interface{}) bool {
	s, ok := v.(string)

	return ok && s == ""
}

func checkConcrete(t ResourceType) error {
	if t == nil || t.ResourcePath() == "" {
		return fmt.Errorf("%w: operation requires a concrete resource type", ErrUnsupportedOperation)
	}

	return nil
}

func pickLookupKey(t ResourceType, lookup map[string]interface{}) (string, interface{}, bool) {
	for _, key := range append([]string{"id", "name"}, t.LookupKeys()...) {
		if value, ok := lookup[key]; ok {
			return key, value, true
		}
	}

	return "", nil, false
}

func lookupString(v interface{}) string {
	return scalarString(v)
}

func containsInt(ids []int, id int) bool {
	for _, candidate := range ids {
		if candidate == id {
			return true
		}
	}

	return false
}

// createdID matches the minimal XML the server returns from a successful
// POST, e.g. <category><id>12</id></category>.
type createdID struct {
	ID int `xml:"id"`
}

func parseCreatedID(body string) (int, error) {
	var parsed createdID

	if err := xml.Unmarshal([]byte(body), &parsed); err != nil || parsed.ID == 0 {
		return 0, fmt.Errorf("%w: create response did not include an id", ErrInvalidData)
	}

	return parsed.ID, nil
}
