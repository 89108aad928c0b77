package server

import (
	"log"
	"net/http"

	"github.com/permscope/permscope/pkg/salesforce"
)

type Server struct {
	SF       *salesforce.Client
	Username string
	Password string
}

func New(sf *salesforce.Client, user, pass string) *Server {
	return &Server{
		SF:       sf,
		Username: user,
		Password: pass,
	}
}

func (s *Server) Start(addr string) error {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/compare", s.basicAuth(s.handleCompare))
	mux.HandleFunc("GET /api/profiles", s.basicAuth(s.handleProfiles))
	mux.HandleFunc("GET /api/permissionsets", s.basicAuth(s.handlePermissionSets))

	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, mux)
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
