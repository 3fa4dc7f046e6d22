package api

import (
	"net/http"

	"wgconf/internal/configstore"
)

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func Router(store *configstore.Store, opts Options) http.Handler {
	mux := http.NewServeMux()

	RegisterRoutes(mux, store, opts)

	if opts.StaticDir != "" {
		mux.Handle("GET /", http.FileServer(http.Dir(opts.StaticDir)))
	}

	return withCORS(mux)
}
