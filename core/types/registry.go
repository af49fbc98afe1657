package types

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrIncompatibleSignature is returned by Resolve when no overload of a
// callable accepts the given argument types.
var ErrIncompatibleSignature = errors.New("incompatible signature")

// ErrUnknownCallable is returned by Resolve for a name with no overloads
var ErrUnknownCallable = errors.New("unknown callable")

// Lookup is the view of a registry the parser depends on
type Lookup interface {
	// Exists reports whether name denotes a known callable
	Exists(name string) bool
	// Resolve picks the overload of name accepting args, in order
	Resolve(name string, args []TypeTag) (Signature, error)
}

// Registry holds callable signatures keyed by name. A name may carry several
// overloads; Resolve prefers the one needing the fewest widening conversions
// and breaks ties by registration order.
type Registry struct {
	mu        sync.RWMutex
	callables map[string][]Signature
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		callables: make(map[string][]Signature),
	}
}

// Register adds an overload for sig.Name. Registering an overload with the
// same parameter pattern as an existing one is an error.
func (r *Registry) Register(sig Signature) error {
	if err := sig.Validate(); err != nil {
		return fmt.Errorf("invalid signature: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.callables[sig.Name] {
		if samePattern(existing, sig) {
			return fmt.Errorf("duplicate overload %s", sig)
		}
	}
	r.callables[sig.Name] = append(r.callables[sig.Name], sig)
	return nil
}

// MustRegister registers sig and panics on error. Used for static tables.
func (r *Registry) MustRegister(sigs ...Signature) *Registry {
	for _, sig := range sigs {
		if err := r.Register(sig); err != nil {
			panic(err)
		}
	}
	return r
}

// Exists checks if a callable name is registered
func (r *Registry) Exists(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.callables[name]) > 0
}

// Resolve returns the best overload of name for the ordered argument tags
func (r *Registry) Resolve(name string, args []TypeTag) (Signature, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	overloads := r.callables[name]
	if len(overloads) == 0 {
		return Signature{}, fmt.Errorf("%w: %s", ErrUnknownCallable, name)
	}

	best := -1
	bestCost := 0
	for i, sig := range overloads {
		cost, ok := sig.Match(args)
		if !ok {
			continue
		}
		if best < 0 || cost < bestCost {
			best, bestCost = i, cost
		}
	}
	if best < 0 {
		return Signature{}, fmt.Errorf("%w: %s(%s)", ErrIncompatibleSignature, name, joinTags(args))
	}
	return overloads[best], nil
}

// Overloads returns a copy of all signatures registered for name
func (r *Registry) Overloads(name string) []Signature {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]Signature(nil), r.callables[name]...)
}

// Names returns all registered callable names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.callables))
	for name := range r.callables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of registered overloads
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := 0
	for _, sigs := range r.callables {
		n += len(sigs)
	}
	return n
}

// Suggest returns up to limit registered names close to name, best first
func (r *Registry) Suggest(name string, limit int) []string {
	if name == "" || limit <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(name, r.Names())
	if len(ranks) == 0 {
		// Fall back to reverse matching so that over-long typos still hit
		for _, candidate := range r.Names() {
			if fuzzy.MatchFold(candidate, name) {
				ranks = append(ranks, fuzzy.Rank{Source: name, Target: candidate, Distance: len(name) - len(candidate)})
			}
		}
	}
	sort.Stable(ranks)

	out := make([]string, 0, limit)
	for _, rank := range ranks {
		if len(out) == limit {
			break
		}
		out = append(out, rank.Target)
	}
	return out
}

// Merge copies every overload of other into r
func (r *Registry) Merge(other *Registry) error {
	for _, name := range other.Names() {
		for _, sig := range other.Overloads(name) {
			if err := r.Register(sig); err != nil {
				return err
			}
		}
	}
	return nil
}

func samePattern(a, b Signature) bool {
	if a.Variadic != b.Variadic || len(a.Params) != len(b.Params) {
		return false
	}
	for i := range a.Params {
		if a.Params[i] != b.Params[i] {
			return false
		}
	}
	return true
}

func joinTags(tags []TypeTag) string {
	parts := make([]string, len(tags))
	for i, t := range tags {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}

// Global registry instance
var globalRegistry = NewRegistry()

// Global returns the process-wide registry
func Global() *Registry {
	return globalRegistry
}
