package customerio

import (
	"context"
	"encoding/json"
)

// Action is the operation applied to an entity in a Track API v2 request.
type Action string

const (
	ActionIdentify            Action = "identify"
	ActionDelete              Action = "delete"
	ActionEvent               Action = "event"
	ActionScreen              Action = "screen"
	ActionPage                Action = "page"
	ActionAddRelationships    Action = "add_relationships"
	ActionDeleteRelationships Action = "delete_relationships"
	ActionAddDevice           Action = "add_device"
	ActionDeleteDevice        Action = "delete_device"
	ActionMerge               Action = "merge"
	ActionSuppress            Action = "suppress"
	ActionUnsuppress          Action = "unsuppress"
)

// Entity types understood by the v2 API.
const (
	entityPerson = "person"
	entityObject = "object"
)

// Batch requests must stay under 500KB total and 32KB per item.
const (
	maxBatchBytes     = 500 << 10
	maxBatchItemBytes = 32 << 10
)

// Identifiers references an entity in the v2 tracking model. The two
// implementations are [PersonIdentifiers] and [ObjectIdentifiers].
type Identifiers interface {
	blank() bool
}

// PersonIdentifiers references a person by exactly one of its identifier
// values; set only the field your workspace uses.
type PersonIdentifiers struct {
	ID    string `json:"id,omitempty"`
	Email string `json:"email,omitempty"`
	CIOID string `json:"cio_id,omitempty"`
}

func (p PersonIdentifiers) blank() bool {
	return p == PersonIdentifiers{}
}

// ObjectIdentifiers references an object (a non-person entity such as an
// account or course) either by type+id or by its cio_object_id.
type ObjectIdentifiers struct {
	ObjectTypeID string `json:"object_type_id,omitempty"`
	ObjectID     string `json:"object_id,omitempty"`
	CIOObjectID  string `json:"cio_object_id,omitempty"`
}

func (o ObjectIdentifiers) blank() bool {
	return o == ObjectIdentifiers{}
}

// Relationship links an entity payload to another entity.
type Relationship struct {
	Identifiers Identifiers `json:"identifiers"`
}

// EntityPayload is a single v2 entity operation, used directly with
// [TrackV2.SendEntity] and as the items of [TrackV2.SendBatch].
type EntityPayload struct {
	Type          string         `json:"type"`
	Action        Action         `json:"action"`
	Identifiers   Identifiers    `json:"identifiers"`
	Attributes    map[string]any `json:"attributes,omitempty"`
	Name          string         `json:"name,omitempty"`
	Device        map[string]any `json:"device,omitempty"`
	Relationships []Relationship `json:"cio_relationships,omitempty"`
}

// TrackV2 talks to the Track API v2. The v2 API has only two endpoints,
// /entity and /batch, and decides what to do based on the type and action
// keys of the payload. Unlike v1 it can also operate on objects: grouping
// mechanisms for people, like an account they belong to or an online course
// they enroll in.
//
// A TrackV2 is obtained via [TrackClient.V2] and shares the parent client's
// connection pool, credentials and retry configuration.
type TrackV2 struct {
	client *TrackClient
}

func (v *TrackV2) baseURL() string {
	return setupBaseURL(v.client.host, v.client.port, trackAPIV2Prefix)
}

// SendEntity posts a fully-formed entity operation to /api/v2/entity.
func (v *TrackV2) SendEntity(ctx context.Context, payload EntityPayload) error {
	if payload.Identifiers == nil || payload.Identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in SendEntity")
	}

	return v.client.send(ctx, "POST", pathJoin(v.baseURL(), "entity"), entityMap(payload))
}

// SendBatch sends multiple entity operations in a single request. Types can
// be mixed freely in one batch. The request must be smaller than 500KB and
// each item 32KB or smaller; oversized batches fail before any network call.
//
// A 207 Multi-Status response counts as overall success at this layer;
// inspecting which sub-items failed is the caller's responsibility.
func (v *TrackV2) SendBatch(ctx context.Context, payloads []EntityPayload) error {
	if len(payloads) == 0 {
		return invalidArgumentf("batch cannot be empty in SendBatch")
	}

	total := 0
	for i, p := range payloads {
		encoded, err := json.Marshal(entityMap(p))
		if err != nil {
			return invalidArgumentf("batch item %d is not serializable: %v", i, err)
		}
		if len(encoded) > maxBatchItemBytes {
			return invalidArgumentf("batch item %d exceeds %d bytes", i, maxBatchItemBytes)
		}
		total += len(encoded)
	}
	if total > maxBatchBytes {
		return invalidArgumentf("batch exceeds %d bytes", maxBatchBytes)
	}

	items := make([]map[string]any, 0, len(payloads))
	for _, p := range payloads {
		items = append(items, entityMap(p))
	}

	return v.client.send(ctx, "POST", pathJoin(v.baseURL(), "batch"), map[string]any{"batch": items})
}

// entityMap flattens an EntityPayload into the wire payload, sanitizing the
// attribute map.
func entityMap(p EntityPayload) map[string]any {
	out := map[string]any{
		"type":        p.Type,
		"action":      p.Action,
		"identifiers": p.Identifiers,
	}
	if p.Attributes != nil {
		out["attributes"] = sanitize(p.Attributes)
	}
	if p.Name != "" {
		out["name"] = p.Name
	}
	if p.Device != nil {
		out["device"] = p.Device
	}
	if p.Relationships != nil {
		out["cio_relationships"] = p.Relationships
	}
	return out
}

// IdentifyPerson creates or updates a person, optionally setting attributes
// on the profile.
func (v *TrackV2) IdentifyPerson(ctx context.Context, identifiers PersonIdentifiers, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in IdentifyPerson")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionIdentify,
		Identifiers: identifiers,
		Attributes:  orEmpty(attrs),
	})
}

// DeletePerson deletes a person profile.
func (v *TrackV2) DeletePerson(ctx context.Context, identifiers PersonIdentifiers) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in DeletePerson")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionDelete,
		Identifiers: identifiers,
	})
}

// TrackPersonEvent records an event for a person. name is how the event is
// referenced in campaigns or segments.
func (v *TrackV2) TrackPersonEvent(ctx context.Context, identifiers PersonIdentifiers, name string, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in TrackPersonEvent")
	}
	if name == "" {
		return invalidArgumentf("name cannot be blank in TrackPersonEvent")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionEvent,
		Identifiers: identifiers,
		Name:        name,
		Attributes:  orEmpty(attrs),
	})
}

// PersonPageview records a page view for a person; name is the page URL.
func (v *TrackV2) PersonPageview(ctx context.Context, identifiers PersonIdentifiers, name string, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in PersonPageview")
	}
	if name == "" {
		return invalidArgumentf("name cannot be blank in PersonPageview")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionPage,
		Identifiers: identifiers,
		Name:        name,
		Attributes:  orEmpty(attrs),
	})
}

// PersonScreen records a mobile screen view for a person.
func (v *TrackV2) PersonScreen(ctx context.Context, identifiers PersonIdentifiers, name string, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in PersonScreen")
	}
	if name == "" {
		return invalidArgumentf("name cannot be blank in PersonScreen")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionScreen,
		Identifiers: identifiers,
		Name:        name,
		Attributes:  orEmpty(attrs),
	})
}

// AddPersonDevice adds or updates a device on a person. platform is "ios"
// or "android"; extra device attributes (e.g. last_used) go in attrs.
func (v *TrackV2) AddPersonDevice(ctx context.Context, identifiers PersonIdentifiers, deviceID, platform string, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in AddPersonDevice")
	}
	if deviceID == "" {
		return invalidArgumentf("device_id cannot be blank in AddPersonDevice")
	}
	if platform == "" {
		return invalidArgumentf("platform cannot be blank in AddPersonDevice")
	}

	device := map[string]any{"id": deviceID, "platform": platform}
	for k, val := range attrs {
		device[k] = val
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionAddDevice,
		Identifiers: identifiers,
		Device:      device,
	})
}

// DeletePersonDevice removes a device from a person.
func (v *TrackV2) DeletePersonDevice(ctx context.Context, identifiers PersonIdentifiers, deviceID string) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in DeletePersonDevice")
	}
	if deviceID == "" {
		return invalidArgumentf("device_id cannot be blank in DeletePersonDevice")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionDeleteDevice,
		Identifiers: identifiers,
		Device:      map[string]any{"id": deviceID},
	})
}

// SuppressPerson deletes the person profile and prevents the identifiers
// from being re-added.
func (v *TrackV2) SuppressPerson(ctx context.Context, identifiers PersonIdentifiers) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in SuppressPerson")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionSuppress,
		Identifiers: identifiers,
	})
}

// UnsuppressPerson makes the identifiers available again so a new profile
// can be created.
func (v *TrackV2) UnsuppressPerson(ctx context.Context, identifiers PersonIdentifiers) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in UnsuppressPerson")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityPerson,
		Action:      ActionUnsuppress,
		Identifiers: identifiers,
	})
}

// MergePersons merges two person profiles. The primary profile remains
// after the merge and the secondary is deleted; this is not reversible.
func (v *TrackV2) MergePersons(ctx context.Context, primary, secondary PersonIdentifiers) error {
	if primary.blank() {
		return invalidArgumentf("primary identifiers cannot be blank in MergePersons")
	}
	if secondary.blank() {
		return invalidArgumentf("secondary identifiers cannot be blank in MergePersons")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:          entityPerson,
		Action:        ActionMerge,
		Identifiers:   primary,
		Relationships: []Relationship{{Identifiers: secondary}},
	})
}

// AddPersonRelationships relates a person to one or more objects.
func (v *TrackV2) AddPersonRelationships(ctx context.Context, identifiers PersonIdentifiers, relationships []Relationship) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in AddPersonRelationships")
	}
	if len(relationships) == 0 {
		return invalidArgumentf("relationships cannot be blank in AddPersonRelationships")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:          entityPerson,
		Action:        ActionAddRelationships,
		Identifiers:   identifiers,
		Relationships: relationships,
	})
}

// DeletePersonRelationships removes relationships between a person and one
// or more objects.
func (v *TrackV2) DeletePersonRelationships(ctx context.Context, identifiers PersonIdentifiers, relationships []Relationship) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in DeletePersonRelationships")
	}
	if len(relationships) == 0 {
		return invalidArgumentf("relationships cannot be blank in DeletePersonRelationships")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:          entityPerson,
		Action:        ActionDeleteRelationships,
		Identifiers:   identifiers,
		Relationships: relationships,
	})
}

// IdentifyObject creates or updates an object.
func (v *TrackV2) IdentifyObject(ctx context.Context, identifiers ObjectIdentifiers, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in IdentifyObject")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityObject,
		Action:      ActionIdentify,
		Identifiers: identifiers,
		Attributes:  orEmpty(attrs),
	})
}

// DeleteObject deletes an object.
func (v *TrackV2) DeleteObject(ctx context.Context, identifiers ObjectIdentifiers) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in DeleteObject")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityObject,
		Action:      ActionDelete,
		Identifiers: identifiers,
	})
}

// TrackObjectEvent records an event on an object.
func (v *TrackV2) TrackObjectEvent(ctx context.Context, identifiers ObjectIdentifiers, name string, attrs map[string]any) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in TrackObjectEvent")
	}
	if name == "" {
		return invalidArgumentf("name cannot be blank in TrackObjectEvent")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:        entityObject,
		Action:      ActionEvent,
		Identifiers: identifiers,
		Name:        name,
		Attributes:  orEmpty(attrs),
	})
}

// AddObjectRelationships relates an object to one or more people.
func (v *TrackV2) AddObjectRelationships(ctx context.Context, identifiers ObjectIdentifiers, relationships []Relationship) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in AddObjectRelationships")
	}
	if len(relationships) == 0 {
		return invalidArgumentf("relationships cannot be blank in AddObjectRelationships")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:          entityObject,
		Action:        ActionAddRelationships,
		Identifiers:   identifiers,
		Relationships: relationships,
	})
}

// DeleteObjectRelationships removes relationships between an object and one
// or more people.
func (v *TrackV2) DeleteObjectRelationships(ctx context.Context, identifiers ObjectIdentifiers, relationships []Relationship) error {
	if identifiers.blank() {
		return invalidArgumentf("identifiers cannot be blank in DeleteObjectRelationships")
	}
	if len(relationships) == 0 {
		return invalidArgumentf("relationships cannot be blank in DeleteObjectRelationships")
	}

	return v.SendEntity(ctx, EntityPayload{
		Type:          entityObject,
		Action:        ActionDeleteRelationships,
		Identifiers:   identifiers,
		Relationships: relationships,
	})
}

func orEmpty(attrs map[string]any) map[string]any {
	if attrs == nil {
		return map[string]any{}
	}
	return attrs
}
