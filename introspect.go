package contract

// Slot names a validation slot of an endpoint's contract.
type Slot string

// The six validation slots an endpoint may declare.
const (
	SlotPayload      Slot = "payload"
	SlotDTO          Slot = "dto"
	SlotError        Slot = "error"
	SlotPathParams   Slot = "pathParams"
	SlotSearchParams Slot = "searchParams"
	SlotExtra        Slot = "extra"
)

// Schema returns the schemas actually supplied for an endpoint, keyed by
// slot. Slots without a schema are genuinely absent from the map, and
// the result is nil when the endpoint supplied none. Useful for reusing
// contract validation in form layers.
func (c *Client) Schema(name string) map[Slot]Schema {
	ep := c.lookup(name)
	var out map[Slot]Schema
	ep.Schemas.each(func(slot Slot, schema Schema) {
		if out == nil {
			out = make(map[Slot]Schema)
		}
		out[slot] = schema
	})
	return out
}

// RawSchema returns the underlying schema objects for the slots whose
// schema exposes one via RawSchemer. Slots with no schema, or whose
// schema wraps an opaque predicate, are absent; nil when nothing is
// exposed.
func (c *Client) RawSchema(name string) map[Slot]any {
	ep := c.lookup(name)
	var out map[Slot]any
	ep.Schemas.each(func(slot Slot, schema Schema) {
		raw, ok := schema.(RawSchemer)
		if !ok {
			return
		}
		if out == nil {
			out = make(map[Slot]any)
		}
		out[slot] = raw.RawSchema()
	})
	return out
}
