package listview

import "sync"

// Registry hands out one controller per shop scope, so concurrent
// requests from the same shop share a single cached record set.
type Registry struct {
	mu          sync.Mutex
	lister      Lister
	controllers map[string]*Controller
}

func NewRegistry(lister Lister) *Registry {
	return &Registry{
		lister:      lister,
		controllers: make(map[string]*Controller),
	}
}

// ForShop returns the shop's controller, creating and priming it on
// first use.
func (r *Registry) ForShop(shopPhone string) (*Controller, error) {
	r.mu.Lock()
	controller, ok := r.controllers[shopPhone]
	if !ok {
		controller = NewController(shopPhone, r.lister)
		r.controllers[shopPhone] = controller
	}
	r.mu.Unlock()

	if !ok {
		if err := controller.Refresh(); err != nil {
			// Drop the unprimed controller so the next call retries the
			// fetch instead of serving an empty cache. Only remove our
			// own entry; an Evict plus re-create may have replaced it.
			r.mu.Lock()
			if r.controllers[shopPhone] == controller {
				delete(r.controllers, shopPhone)
			}
			r.mu.Unlock()
			return nil, err
		}
	}
	return controller, nil
}

// Evict drops a shop's controller, e.g. on logout.
func (r *Registry) Evict(shopPhone string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.controllers, shopPhone)
}
