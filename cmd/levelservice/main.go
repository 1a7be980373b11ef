package main

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/wyisco-art/DriveAndPutt/internal/levels"
	"github.com/wyisco-art/DriveAndPutt/internal/shared/logger"
)

// levelAPI serves the static hole catalog to clients and the editor.
type levelAPI struct {
	log logger.Logger
}

func main() {
	log := logger.New("levelservice")

	viper.SetDefault("levels.addr", ":9001")
	viper.SetEnvPrefix("DAP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	addr := viper.GetString("levels.addr")

	api := &levelAPI{log: log}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", api.handleHealth)
	mux.HandleFunc("/v1/levels", api.handleList)
	mux.HandleFunc("/v1/levels/", api.handleGet)
	mux.HandleFunc("/v1/levels/validate", api.handleValidate)

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           withCORS(mux),
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Str("addr", addr).Int("levels", levels.Count()).Msg("level service listening")
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func (a *levelAPI) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *levelAPI) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
		return
	}
	summaries := make([]map[string]interface{}, 0, levels.Count())
	for i := 1; i <= levels.Count(); i++ {
		lvl := levels.Get(i)
		summaries = append(summaries, map[string]interface{}{
			"id":   lvl.ID,
			"name": lvl.Name,
			"par":  lvl.Par,
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"count": len(summaries), "levels": summaries})
}

// handleGet serves one full level record. Indices wrap modulo the
// catalog size, matching the in-game next-level behavior.
func (a *levelAPI) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
		return
	}
	raw := strings.TrimPrefix(r.URL.Path, "/v1/levels/")
	index, err := strconv.Atoi(raw)
	if err != nil || index < 1 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_level_index"})
		return
	}
	writeJSON(w, http.StatusOK, levels.Get(index))
}

// handleValidate parses an editor-produced level JSON body and reports
// whether the game could load it.
func (a *levelAPI) handleValidate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method_not_allowed"})
		return
	}
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_level_json"})
		return
	}
	lvl, err := levels.Parse(body)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bad_level_json"})
		return
	}
	if lvl.Par <= 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "par_required"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"name":   lvl.Name,
		"walls":  len(lvl.Walls),
		"sand":   len(lvl.SandTraps),
		"water":  len(lvl.Water),
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
