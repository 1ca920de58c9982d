package oauth

import (
	"context"
	"fmt"
	"html/template"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

// relayPage drives the same popup dance the hosted config page performs: it
// opens the authorization window and forwards the completion message posted
// by the redirect target back to the relay.
var relayPage = template.Must(template.New("relay").Parse(`<html>
<body>
<h2>Verified First authorization</h2>
<p>A Twitch authorization window should have opened. Finish the prompt there.</p>
<script>
'use strict'
const popup = window.open({{.AuthURL}}, '_blank', 'width=500,height=700')
window.addEventListener('message', (msg) => {
  popup.close()
  fetch('/complete', { method: 'POST', body: msg.data }).then(() => {
    document.body.innerHTML = '<h2>Done, you can close this tab.</h2>'
  })
})
</script>
</body>
</html>
`))

// Relay implements Opener for command-line use. It binds a loopback HTTP
// server and serves a page that opens the authorization popup and relays the
// cross-window completion message back over HTTP.
type Relay struct {
	addr   string
	notify func(localURL string)
	log    *zap.Logger
}

// NewRelay creates a relay bound to addr (host:port, port 0 for ephemeral).
// notify, if non-nil, receives the local URL the user has to visit.
func NewRelay(addr string, notify func(localURL string), log *zap.Logger) *Relay {
	if log == nil {
		log = zap.NewNop()
	}
	return &Relay{addr: addr, notify: notify, log: log}
}

// Open binds the relay server and returns the window handle. The bind
// failing is this environment's popup blocker.
func (r *Relay) Open(authURL string) (Window, error) {
	listener, err := net.Listen("tcp", r.addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind relay listener: %w", err)
	}

	window := &RelayWindow{
		msgs: make(chan string, 1),
		url:  fmt.Sprintf("http://%s/", listener.Addr()),
	}

	router := mux.NewRouter()
	router.HandleFunc("/", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		if err := relayPage.Execute(w, struct{ AuthURL string }{authURL}); err != nil {
			r.log.Error("failed to render relay page", zap.Error(err))
		}
	}).Methods("GET")
	router.HandleFunc("/complete", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(req.Body)
		if err != nil {
			http.Error(w, "could not read message", http.StatusBadRequest)
			return
		}
		window.post(string(body))
		w.WriteHeader(http.StatusNoContent)
	}).Methods("POST")

	server := &http.Server{Handler: router}
	window.server = server
	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			r.log.Error("relay server error", zap.Error(err))
		}
	}()

	r.log.Info("authorization relay listening", zap.String("url", window.url))
	if r.notify != nil {
		r.notify(window.url)
	}
	return window, nil
}

// RelayWindow is the open relay "popup". The first forwarded message wins;
// later ones are dropped.
type RelayWindow struct {
	msgs   chan string
	url    string
	server *http.Server

	mu     sync.Mutex
	posted bool
	closed bool
}

// URL returns the local address the user must open to run the grant.
func (w *RelayWindow) URL() string {
	return w.url
}

// Messages yields the forwarded completion payload. The channel closes
// without a payload if the window is closed first.
func (w *RelayWindow) Messages() <-chan string {
	return w.msgs
}

// Close shuts the relay server down and closes the message channel.
func (w *RelayWindow) Close() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = w.server.Shutdown(ctx)
	close(w.msgs)
}

// post forwards a completion message, once.
func (w *RelayWindow) post(msg string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.posted || w.closed {
		return
	}
	w.posted = true
	w.msgs <- msg
}
