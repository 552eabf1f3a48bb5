package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
)

const (
	AccessToken   = "fitlife-access-token"
	ClientId      = "client-id"
	ClientSecret  = "client-secret"
	TokenEndpoint = "/oauth/token"

	AdminId       = "admin"
	AdminPassword = "secret"
	AdminToken    = "admin-session-token"
)

// FitlifeServer serves canned vendor responses keyed by request path.
type FitlifeServer struct {
	*httptest.Server
	responses map[string]string
	statuses  map[string]int
	Requests  []*http.Request
}

// SetResponse registers the body returned for GET requests to path.
func (f *FitlifeServer) SetResponse(path string, body string) {
	f.responses[path] = body
}

// SetStatus registers an error status returned for requests to path.
func (f *FitlifeServer) SetStatus(path string, status int) {
	f.statuses[path] = status
}

func ServerStub() *FitlifeServer {
	fitlife := &FitlifeServer{
		responses: map[string]string{},
		statuses:  map[string]int{},
	}
	fitlife.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fitlife.Requests = append(fitlife.Requests, r)

		if status, ok := fitlife.statuses[r.URL.Path]; ok {
			w.WriteHeader(status)
			return
		}

		switch {
		case r.Method == http.MethodPost && r.URL.Path == TokenEndpoint:
			id, secret, ok := r.BasicAuth()
			if !ok || id != ClientId || secret != ClientSecret {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, map[string]any{
				"access_token": AccessToken,
				"token_type":   "bearer",
				"expires_in":   3600,
			})
		case r.Method == http.MethodPost && r.URL.Path == "/api/admin/login":
			credentials := map[string]string{}
			if err := json.NewDecoder(r.Body).Decode(&credentials); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if credentials["id"] != AdminId || credentials["password"] != AdminPassword {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			writeJSON(w, map[string]any{
				"token": AdminToken,
				"admin": map[string]any{"id": AdminId, "name": "Facility Admin", "role": "admin"},
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/api/"):
			if r.Header.Get("Authorization") != "Bearer "+AccessToken {
				w.WriteHeader(http.StatusUnauthorized)
				return
			}
			body, ok := fitlife.responses[r.URL.Path]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Header().Add("content-type", "application/json")
			w.Write([]byte(body))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	return fitlife
}

func writeJSON(w http.ResponseWriter, value any) {
	body, err := json.Marshal(value)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Add("content-type", "application/json")
	w.Write(body)
}
