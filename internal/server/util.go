package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/phanxgames/tempmap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writePNG(w http.ResponseWriter, data []byte, hit bool) {
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "public, max-age=3600")
	if hit {
		w.Header().Set("X-Cache", "HIT")
	} else {
		w.Header().Set("X-Cache", "MISS")
	}
	w.Write(data)
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(r.URL.Query().Get(name))
	if err != nil {
		return def
	}
	return v
}

func queryBool(r *http.Request, name string) bool {
	v, _ := strconv.ParseBool(r.URL.Query().Get(name))
	return v
}

// parseBreakpoints reads "threshold:#rrggbb" entries.
func parseBreakpoints(raw []string) ([]tempmap.HexBreakpoint, error) {
	out := make([]tempmap.HexBreakpoint, 0, len(raw))
	for _, s := range raw {
		t, hex, ok := strings.Cut(s, ":")
		if !ok {
			return nil, fmt.Errorf("invalid breakpoint %q", s)
		}
		threshold, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid breakpoint threshold %q", t)
		}
		out = append(out, tempmap.HexBreakpoint{Threshold: threshold, Hex: hex})
	}
	return out, nil
}
