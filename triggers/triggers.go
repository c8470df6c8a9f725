// Package triggers implements the Python-side trigger registry of spec
// §4.8: callbacks fired around create/save/delete and database
// initialization, independent of any DDL-level SQLite trigger.
//
// Grounded on original_source/lorelie/database/triggers.py
// (PythonTrigger, TriggerManager) — the Go port keeps a registry keyed
// by event name and table, but drops the decorator-based registration
// API in favor of an explicit Register call, since Go has no
// equivalent to Python's function decorators.
package triggers

import "sync"

// Event names the lifecycle moment a trigger fires at.
type Event string

const (
	PreInit      Event = "pre_init"
	PostInit     Event = "post_init"
	BeforeCreate Event = "before_create"
	AfterCreate  Event = "after_create"
	BeforeSave   Event = "before_save"
	AfterSave    Event = "after_save"
	BeforeDelete Event = "before_delete"
	AfterDelete  Event = "after_delete"
)

// Callback receives the name of the table the event fired for and an
// opaque payload (typically the row or field values involved).
type Callback func(table string, payload any)

type registration struct {
	table string
	name  string
	fn    Callback
}

// Registry holds every trigger registered for a single Database.
type Registry struct {
	mu   sync.Mutex
	byEv map[Event][]registration
}

// NewRegistry returns an empty trigger registry.
func NewRegistry() *Registry {
	return &Registry{byEv: map[Event][]registration{}}
}

// Register attaches fn to run whenever event fires for table. An empty
// table matches every table. name is stored with the registration; when
// empty it defaults to "trigger".
func (r *Registry) Register(event Event, table string, name string, fn Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if name == "" {
		name = "trigger"
	}
	r.byEv[event] = append(r.byEv[event], registration{table: table, name: name, fn: fn})
}

// Run fires every trigger registered for event that matches table (or
// was registered against every table).
func (r *Registry) Run(event Event, table string, payload any) {
	r.mu.Lock()
	regs := append([]registration{}, r.byEv[event]...)
	r.mu.Unlock()

	for _, reg := range regs {
		if reg.table == "" || reg.table == table {
			reg.fn(table, payload)
		}
	}
}
