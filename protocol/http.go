package protocol

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/jonwraymond/toolgate/auth"
)

// maxBodyBytes bounds the request body read by the handler.
const maxBodyBytes = 4 << 20

// HandlerConfig configures the HTTP handler.
type HandlerConfig struct {
	// Path is the mount path reported in the info document.
	// Default: "/mcp"
	Path string
}

// InfoResult is the GET response: server metadata for connected clients.
type InfoResult struct {
	Name           string            `json:"name"`
	Version        string            `json:"version"`
	Transport      string            `json:"transport"`
	Authentication []string          `json:"authentication"`
	User           string            `json:"user,omitempty"`
	Endpoints      map[string]string `json:"endpoints"`
}

// NewHandler mounts the dispatcher behind dual authentication. POST
// dispatches JSON-RPC; GET serves server metadata; everything else is
// 405.
func NewHandler(d *Dispatcher, authn *auth.DualAuthenticator, config HandlerConfig) http.Handler {
	if config.Path == "" {
		config.Path = "/mcp"
	}

	// Keep credential extraction aligned with the authenticator: a
	// custom PAT header configured on one side must be honored by the
	// other, or forwarding breaks silently.
	if d.config.StaticTokenHeader == "" {
		d.config.StaticTokenHeader = authn.StaticTokenHeader()
	}

	h := &handler{dispatcher: d, authn: authn, config: config}
	return auth.RequireAuth(authn, h)
}

type handler struct {
	dispatcher *Dispatcher
	authn      *auth.DualAuthenticator
	config     HandlerConfig
}

func (h *handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.servePost(w, r)
	case http.MethodGet:
		h.serveInfo(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *handler) servePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		http.Error(w, "failed to read request body", http.StatusBadRequest)
		return
	}

	resp := h.dispatcher.Handle(r.Context(), body)
	if resp == nil {
		// Notification: acknowledge with an empty body.
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		return
	}

	// Protocol errors ride in-band; the HTTP layer stays 200.
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(resp)
}

func (h *handler) serveInfo(w http.ResponseWriter, r *http.Request) {
	info := InfoResult{
		Name:           h.dispatcher.config.Name,
		Version:        h.dispatcher.config.Version,
		Transport:      "http",
		Authentication: h.authn.Schemes(),
		Endpoints: map[string]string{
			"rpc": h.config.Path,
		},
	}
	if id := auth.IdentityFromContext(r.Context()); id != nil {
		info.User = id.Email
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(info)
}
