package stub

import "sync"

// UnhandledMode tags how the Registry treats a request enabled but with no
// matching rule or ignore rule (spec.md §4.2).
type UnhandledMode int

const (
	// Optout reports matchStubNotFound for unhandled requests.
	Optout UnhandledMode = iota
	// Optin lets unhandled requests pass through to the real transport.
	Optin
)

// Registry is the global, process-wide store of StubRules and IgnoreRules,
// per spec.md §4.2. Use Default to obtain the shared instance or New for
// an isolated one (tests typically want the latter, to avoid cross-test
// interference on the process-wide store).
type Registry struct {
	mu            sync.RWMutex
	enabled       bool
	unhandledMode UnhandledMode
	rules         []*StubRule
	ignores       []*IgnoreRule
}

// New returns an empty, disabled Registry in Optout mode.
func New() *Registry {
	return &Registry{unhandledMode: Optout}
}

var defaultRegistry = sync.OnceValue(New)

// Default returns the process-wide shared Registry that client.Client uses
// unless a caller supplies its own.
func Default() *Registry { return defaultRegistry() }

// Add appends rule to the registry. Rules are matched in the order they
// were added; the first matching rule wins (spec.md §4.2).
func (r *Registry) Add(rule *StubRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, rule)
}

// Remove deletes rule from the registry, if present.
func (r *Registry) Remove(rule *StubRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.rules {
		if existing == rule {
			r.rules = append(r.rules[:i], r.rules[i+1:]...)
			return
		}
	}
}

// RemoveAll clears every StubRule and IgnoreRule from the registry.
func (r *Registry) RemoveAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = nil
	r.ignores = nil
}

// AddIgnore appends an IgnoreRule.
func (r *Registry) AddIgnore(rule *IgnoreRule) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ignores = append(r.ignores, rule)
}

// Enable turns on stub interception.
func (r *Registry) Enable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
}

// Disable turns off stub interception; every request passes through to the
// real transport regardless of registered rules.
func (r *Registry) Disable() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = false
}

// Enabled reports whether interception is currently on.
func (r *Registry) Enabled() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.enabled
}

// SetUnhandledMode configures the behavior for requests that match neither
// a StubRule nor an IgnoreRule while the registry is enabled.
func (r *Registry) SetUnhandledMode(mode UnhandledMode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.unhandledMode = mode
}

// isIgnored reports whether req matches any registered IgnoreRule.
// Must be called with r.mu held for reading.
func (r *Registry) isIgnored(req *Request) bool {
	for _, ig := range r.ignores {
		if ig.matches(req) {
			return true
		}
	}
	return false
}

// Match selects the first StubRule whose matchers all accept req, nil if
// none does.
func (r *Registry) Match(req *Request) *StubRule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rule := range r.rules {
		if rule.matches(req) {
			return rule
		}
	}
	return nil
}

// ShouldHandle reports whether the interceptor must synthesize a response
// for req rather than delegating to the real transport: the registry is
// enabled, req isn't covered by an IgnoreRule, and either a StubRule
// matches or the unhandled mode is Optout (spec.md §4.2's unhandled-mode
// table). An IgnoreRule match wins over a StubRule match.
func (r *Registry) ShouldHandle(req *Request) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if !r.enabled {
		return false
	}
	if r.isIgnored(req) {
		return false
	}
	for _, rule := range r.rules {
		if rule.matches(req) {
			return true
		}
	}
	return r.unhandledMode == Optout
}
