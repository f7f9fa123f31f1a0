package lint

import "sync"

// globalRegistry is the single global registry for all lint rules.
var globalRegistry = NewRegistry()

// Registry stores rules in registration order.
type Registry struct {
	mu    sync.RWMutex
	order []string
	rules map[string]RuleDef // keyed by ID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{rules: make(map[string]RuleDef)}
}

// Add registers a rule. Re-registering an ID replaces the rule in place.
func (r *Registry) Add(rule RuleDef) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rules[rule.ID]; !ok {
		r.order = append(r.order, rule.ID)
	}
	r.rules[rule.ID] = rule
}

// All returns every rule in registration order.
func (r *Registry) All() []RuleDef {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]RuleDef, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.rules[id])
	}
	return out
}

// Get returns a rule by its ID.
func (r *Registry) Get(id string) (RuleDef, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rule, ok := r.rules[id]
	return rule, ok
}

// Register adds a rule to the global registry.
// Call this from init() functions in rule packages.
func Register(rule RuleDef) {
	globalRegistry.Add(rule)
}

// GetAll returns all registered rules in registration order.
func GetAll() []RuleDef {
	return globalRegistry.All()
}

// GetByID returns a rule by its ID.
func GetByID(id string) (RuleDef, bool) {
	return globalRegistry.Get(id)
}

// GetByGroup returns all rules in a specific group.
func GetByGroup(group string) []RuleDef {
	var rules []RuleDef
	for _, rule := range globalRegistry.All() {
		if rule.Group == group {
			rules = append(rules, rule)
		}
	}
	return rules
}

// Count returns the number of registered rules.
func Count() int {
	globalRegistry.mu.RLock()
	defer globalRegistry.mu.RUnlock()
	return len(globalRegistry.order)
}
