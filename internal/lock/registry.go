package lock

import (
	"fmt"
	"regexp"
	"sync"
)

// namePattern ограничивает имена конфигураций безопасными ключами хранилища.
var namePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{0,63}$`)

// Registry выдаёт по одной машине на каждую именованную запись.
type Registry struct {
	mu       sync.Mutex
	machines map[string]*Machine
	store    RecordStore
	verifier Verifier
	opts     []Option
}

// NewRegistry создаёт реестр; opts применяются к каждой создаваемой машине.
func NewRegistry(store RecordStore, verifier Verifier, opts ...Option) *Registry {
	return &Registry{
		machines: make(map[string]*Machine),
		store:    store,
		verifier: verifier,
		opts:     opts,
	}
}

// Get возвращает машину для записи name, создавая её при первом обращении.
func (r *Registry) Get(name string) (*Machine, error) {
	if !namePattern.MatchString(name) {
		return nil, fmt.Errorf("%w: '%s'", ErrInvalidName, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	m, ok := r.machines[name]
	if !ok {
		m = NewMachine(name, r.store, r.verifier, r.opts...)
		r.machines[name] = m
	}
	return m, nil
}
