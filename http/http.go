// Package http serves the metadata catalog for reviewing records before
// they are uploaded.
package http

import (
	"context"
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/julienschmidt/httprouter"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"

	"github.com/foss4g-video/talkmeta/index"
)

// Catalog is the part of the index the API needs.
type Catalog interface {
	Search(qs string) (*index.Result, error)
	Missing() (*index.Result, error)
	BySpeaker(slug string) (*index.Result, error)
	Talk(id string) (*index.IndexedTalk, error)
}

// Handler returns the API routes. If you need to support XHRs, make sure to
// pass respective allowedOrigins like http://domain.com:5000.
func Handler(cat Catalog, allowedOrigins []string) http.Handler {
	router := httprouter.New()

	router.GET("/api/v1/search", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		qs := r.FormValue("q")
		if qs == "" {
			http.Error(w, "Missing query", http.StatusBadRequest)
			return
		}
		res, err := cat.Search(qs)
		if err != nil {
			log.Error().Err(err).Str("query", qs).Msg("Query failed")
			http.Error(w, "Query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	})

	router.GET("/api/v1/missing", func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		res, err := cat.Missing()
		if err != nil {
			log.Error().Err(err).Msg("Query failed")
			http.Error(w, "Query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	})

	router.GET("/api/v1/speakers/:slug", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		res, err := cat.BySpeaker(ps.ByName("slug"))
		if err != nil {
			log.Error().Err(err).Str("speaker", ps.ByName("slug")).Msg("Query failed")
			http.Error(w, "Query failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, res)
	})

	router.GET("/api/v1/talks/:id", func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		talk, err := cat.Talk(ps.ByName("id"))
		if errors.Cause(err) == index.ErrNotFound {
			http.Error(w, "Talk not found", http.StatusNotFound)
			return
		}
		if err != nil {
			log.Error().Err(err).Str("talk", ps.ByName("id")).Msg("Lookup failed")
			http.Error(w, "Lookup failed", http.StatusInternalServerError)
			return
		}
		writeJSON(w, talk)
	})

	c := cors.New(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
	})
	return c.Handler(router)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}

// RunHTTPD serves the catalog on addr until ctx is done.
func RunHTTPD(ctx context.Context, cat Catalog, addr string, allowedOrigins []string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           Handler(cat, allowedOrigins),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", addr).Strs("origins", allowedOrigins).Msg("Starting server")
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return errors.Wrapf(err, "Failed to serve on %s", addr)
	}
	return nil
}
