package mockhttp

import (
	"net/http"
	"os"
	"sync"
)

const envVarName = "GONOMOCKS"

// Disabled returns true if the GONOMOCKS environment variable is not
// empty. Activate, ActivateNonDefault and Deactivate do nothing then.
func Disabled() bool {
	return os.Getenv(envVarName) != ""
}

// activation remembers the transports replaced by a dispatcher so we
// can put them back when Deactivate is called.
type activation struct {
	mu               sync.Mutex
	initialTransport http.RoundTripper
	clients          map[*http.Client]http.RoundTripper
}

// Activate replaces http.DefaultTransport by d, so http.DefaultClient
// and every client without its own Transport send their requests to d.
//
//	d := session.MustBuild()
//	d.Activate()
//	defer d.Deactivate()
func (d *Dispatcher) Activate() {
	if Disabled() {
		return
	}

	d.act.mu.Lock()
	defer d.act.mu.Unlock()

	// make sure that if Activate is called multiple times it doesn't
	// overwrite the initial transport with d.
	if http.DefaultTransport != d {
		d.act.initialTransport = http.DefaultTransport
	}
	http.DefaultTransport = d
}

// ActivateNonDefault makes client, which does not use
// http.DefaultTransport, send its requests to d.
func (d *Dispatcher) ActivateNonDefault(client *http.Client) {
	if Disabled() {
		return
	}

	d.act.mu.Lock()
	defer d.act.mu.Unlock()

	if d.act.clients == nil {
		d.act.clients = map[*http.Client]http.RoundTripper{}
	}
	// save the custom client & its RoundTripper
	if _, ok := d.act.clients[client]; !ok {
		d.act.clients[client] = client.Transport
	}
	client.Transport = d
}

// Deactivate puts back the transports replaced by Activate and
// ActivateNonDefault. Any HTTP calls made after this will use a live
// transport.
func (d *Dispatcher) Deactivate() {
	if Disabled() {
		return
	}

	d.act.mu.Lock()
	defer d.act.mu.Unlock()

	if d.act.initialTransport != nil {
		if http.DefaultTransport == d {
			http.DefaultTransport = d.act.initialTransport
		}
		d.act.initialTransport = nil
	}

	// reset the custom clients to use their original RoundTripper
	for client, transport := range d.act.clients {
		client.Transport = transport
	}
	d.act.clients = nil
}
