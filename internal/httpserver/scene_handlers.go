package httpserver

import (
	"encoding/json"
	"net/http"
	"strconv"

	"booteh.app/web/internal/background"
)

// sceneJSON serves the deterministic scene description for the browser renderer.
func (a *app) sceneJSON(w http.ResponseWriter, r *http.Request) {
	opts := a.cfg.Scene
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			http.Error(w, "invalid seed", http.StatusBadRequest)
			return
		}
		opts.Seed = seed
	}
	scene := background.NewScene(opts).Snapshot()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_ = json.NewEncoder(w).Encode(scene)
}
