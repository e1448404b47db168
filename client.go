package mockhttp

import (
	"maps"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Client returns a new *http.Client sending every request to d.
func (d *Dispatcher) Client() *http.Client {
	return &http.Client{Transport: d}
}

// ClientFactory yields clients by name, each one backed by its own
// dispatcher.
type ClientFactory struct {
	dispatchers map[string]*Dispatcher
}

// NewClientFactory returns a ClientFactory serving the given named
// dispatchers.
func NewClientFactory(named map[string]*Dispatcher) *ClientFactory {
	f := &ClientFactory{dispatchers: make(map[string]*Dispatcher, len(named))}
	for name, d := range named {
		f.dispatchers[name] = d
	}
	return f
}

// ClientFactory returns a ClientFactory serving d under name.
func (d *Dispatcher) ClientFactory(name string) *ClientFactory {
	return NewClientFactory(map[string]*Dispatcher{name: d})
}

// Names returns the sorted configured names.
func (f *ClientFactory) Names() []string {
	return slices.Sorted(maps.Keys(f.dispatchers))
}

// CreateClient returns a new client backed by the dispatcher configured
// under name. An unknown name returns an error wrapping
// ErrUnknownClient, listing the configured names.
func (f *ClientFactory) CreateClient(name string) (*http.Client, error) {
	d, ok := f.dispatchers[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownClient, "%q, configured: %s", name, quoteAll(f.Names()))
	}
	return d.Client(), nil
}

func quoteAll(names []string) string {
	quoted := make([]string, len(names))
	for i, name := range names {
		quoted[i] = strconv.Quote(name)
	}
	return strings.Join(quoted, ", ")
}

// ClientRegistry is implemented by hosts keeping named clients, so a
// dispatcher can be attached to them. See Dispatcher.AttachTo.
type ClientRegistry interface {
	Lookup(name string) (*http.Client, bool)
}

// Clients is a ClientRegistry backed by a map.
type Clients map[string]*http.Client

// Lookup implements ClientRegistry.
func (c Clients) Lookup(name string) (*http.Client, bool) {
	client, ok := c[name]
	return client, ok && client != nil
}

// AttachTo makes the clients registered under names in reg send their
// requests to d. If one name is unknown, no client is touched and an
// error wrapping ErrUnknownClient is returned.
func (d *Dispatcher) AttachTo(reg ClientRegistry, names ...string) error {
	clients := make([]*http.Client, 0, len(names))
	for _, name := range names {
		client, ok := reg.Lookup(name)
		if !ok {
			return errors.Wrapf(ErrUnknownClient, "%q", name)
		}
		clients = append(clients, client)
	}
	for _, client := range clients {
		client.Transport = d
	}
	return nil
}
