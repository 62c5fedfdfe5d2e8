package keyvalue

// Resolver hands out the backend for a single operation. Callers must ask
// again for every call instead of holding on to the returned Store, so a
// backend outage or recovery is picked up per operation.
//
//go:generate mockery --name=Resolver --dir=. --output=./mocks --filename=resolver_mock.go --case=underscore --with-expecter
type Resolver interface {
	Store() Store
}

// StaticResolver always resolves to the same store. Tests use it to pin a
// component to a specific backend.
type StaticResolver struct {
	Backend Store
}

func (r StaticResolver) Store() Store {
	return r.Backend
}
