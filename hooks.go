package contract

import "sync"

// CallInfo is the payload delivered to call hooks: the call's resolved
// input slots plus the client's ambient configuration when it has one.
// Hooks run before the network request executes.
type CallInfo struct {
	// Endpoint is the contract name the call was made with.
	Endpoint string

	// PathParams, SearchParams, Payload, and Extra are the input slots
	// exactly as they enter the executor, after schema validation and
	// any schema transforms.
	PathParams   Params
	SearchParams Params
	Payload      any
	Extra        any

	// Config is a copy of the client's ambient configuration. It is nil
	// for clients constructed without WithBaseURL, WithHeader, or
	// WithUserAgent.
	Config *Config
}

// CallHook observes a single call's arguments. Hooks run synchronously
// on the calling goroutine, before the network request.
type CallHook func(info CallInfo)

// OnCall registers a hook for one endpoint and returns its unsubscribe
// function. Hooks fire in registration order, only for calls to their
// own endpoint, and only while subscribed. Unsubscribing is idempotent
// and leaves every other subscription untouched.
//
// Example:
//
//	stop := client.OnCall("getUser", func(info contract.CallInfo) {
//	    log.Debugf("calling %s with %v", info.Endpoint, info.PathParams)
//	})
//	defer stop()
func (c *Client) OnCall(name string, hook CallHook) func() {
	c.lookup(name) // unknown endpoint is a programming error here too
	return c.hooks.subscribe(name, hook)
}

type hookEntry struct {
	id   int
	hook CallHook
}

// hookBus is the per-client subscriber registry. Registration,
// unregistration, and notification may race; the bus snapshots under a
// mutex and invokes hooks outside it, so a hook may unsubscribe itself.
type hookBus struct {
	mu     sync.Mutex
	nextID int
	subs   map[string][]hookEntry
}

func (b *hookBus) subscribe(endpoint string, hook CallHook) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.subs == nil {
		b.subs = make(map[string][]hookEntry)
	}
	b.nextID++
	id := b.nextID
	b.subs[endpoint] = append(b.subs[endpoint], hookEntry{id: id, hook: hook})

	var once sync.Once
	return func() {
		once.Do(func() {
			b.unsubscribe(endpoint, id)
		})
	}
}

func (b *hookBus) unsubscribe(endpoint string, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	entries := b.subs[endpoint]
	kept := make([]hookEntry, 0, len(entries))
	for _, e := range entries {
		if e.id != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == 0 {
		delete(b.subs, endpoint)
		return
	}
	b.subs[endpoint] = kept
}

func (b *hookBus) publish(info CallInfo) {
	b.mu.Lock()
	entries := b.subs[info.Endpoint]
	snapshot := make([]hookEntry, len(entries))
	copy(snapshot, entries)
	b.mu.Unlock()

	for _, e := range snapshot {
		e.hook(info)
	}
}
