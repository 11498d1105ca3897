// Package sockchan backs the channel shim with a socket.io connection, so
// channel messages can originate outside the process. Keyed listeners are
// dispatched locally: one socket event handler per channel fans out to the
// registered keys, which keeps Unsubscribe independent of the client
// library's listener-removal semantics.
package sockchan

import (
	"crypto/tls"
	"fmt"
	"net/url"
	"sync"

	"github.com/zishang520/engine.io-client-go/transports"
	"github.com/zishang520/engine.io/v2/types"
	"github.com/zishang520/socket.io-client-go/socket"
)

// Options configures the transport connection.
type Options struct {
	// URL of the socket.io endpoint, including path.
	URL string
	// Namespace to join, e.g. "/mainframe".
	Namespace string
	// InsecureSkipVerify disables TLS certificate verification.
	InsecureSkipVerify bool
}

// Transport implements host.ChannelSystem over a socket.io client.
type Transport struct {
	io    *socket.Socket
	mutex sync.RWMutex
	subs  map[string]map[string]func(payload any)
	bound map[string]bool
}

// New connects to the configured endpoint and returns the transport. The
// connection is established asynchronously by the client; subscriptions
// registered before connect complete are honored once it does.
func New(opts Options) (*Transport, error) {
	parsedURL, err := url.Parse(opts.URL)
	if err != nil {
		return nil, fmt.Errorf("sockchan: failed to parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("sockchan: URL %q must include scheme and host", opts.URL)
	}

	baseURL := fmt.Sprintf("%s://%s", parsedURL.Scheme, parsedURL.Host)
	sockOpts := socket.DefaultOptions()
	sockOpts.SetPath(parsedURL.Path)
	sockOpts.SetTransports(types.NewSet(transports.WebSocket))
	if opts.InsecureSkipVerify {
		sockOpts.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	manager := socket.NewManager(baseURL, sockOpts)
	io := manager.Socket(opts.Namespace, sockOpts)
	io.Connect()

	return &Transport{
		io:    io,
		subs:  make(map[string]map[string]func(payload any)),
		bound: make(map[string]bool),
	}, nil
}

// Subscribe registers fn for messages on channel under key. The first
// subscription for a channel binds the socket event handler.
func (t *Transport) Subscribe(channel, key string, fn func(payload any)) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if t.subs[channel] == nil {
		t.subs[channel] = make(map[string]func(payload any))
	}
	t.subs[channel][key] = fn

	if !t.bound[channel] {
		t.bound[channel] = true
		ch := channel
		t.io.On(types.EventName(ch), func(data ...any) {
			var payload any
			if len(data) > 0 {
				payload = data[0]
			}
			t.dispatch(ch, payload)
		})
	}
}

// Unsubscribe drops the listener registered on channel under key.
func (t *Transport) Unsubscribe(channel, key string) {
	t.mutex.Lock()
	defer t.mutex.Unlock()
	delete(t.subs[channel], key)
}

// Publish emits payload on channel.
func (t *Transport) Publish(channel string, payload any) {
	t.io.Emit(channel, payload)
}

// Close disconnects the underlying socket.
func (t *Transport) Close() {
	t.io.Disconnect()
}

func (t *Transport) dispatch(channel string, payload any) {
	t.mutex.RLock()
	fns := make([]func(payload any), 0, len(t.subs[channel]))
	for _, fn := range t.subs[channel] {
		fns = append(fns, fn)
	}
	t.mutex.RUnlock()

	for _, fn := range fns {
		fn(payload)
	}
}
