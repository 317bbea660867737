package api

import (
	"fmt"
	"net/http"

	"dashboard-service/store"
)

type preferenceRequest struct {
	Value *bool `json:"value"`
}

type preference struct {
	Name  string `json:"name"`
	Value bool   `json:"value"`
}

// PreferencesHandler routes requests for /preferences and /preferences/{name}.
func (h *Handler) PreferencesHandler(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r)

	switch {
	case len(parts) == 1 && parts[0] == "preferences":
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		h.listPreferences(w, r)
	case len(parts) == 2 && parts[0] == "preferences":
		def, known := store.PreferenceDefault(parts[1])
		if !known {
			respondWithError(w, http.StatusNotFound, fmt.Sprintf("Unknown preference %q", parts[1]))
			return
		}
		switch r.Method {
		case http.MethodGet:
			h.getPreference(w, r, parts[1], def)
		case http.MethodPut:
			h.setPreference(w, r, parts[1])
		default:
			methodNotAllowed(w)
		}
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

func (h *Handler) listPreferences(w http.ResponseWriter, r *http.Request) {
	names := store.PreferenceNames()
	prefs := make([]preference, 0, len(names))
	for _, name := range names {
		def, _ := store.PreferenceDefault(name)
		v, err := h.prefs.Bool(r.Context(), name, def)
		if err != nil {
			h.fail(w, "Error reading preferences", err)
			return
		}
		prefs = append(prefs, preference{Name: name, Value: v})
	}
	respondWithJSON(w, http.StatusOK, prefs)
}

func (h *Handler) getPreference(w http.ResponseWriter, r *http.Request, name string, def bool) {
	v, err := h.prefs.Bool(r.Context(), name, def)
	if err != nil {
		h.fail(w, "Error reading preference", err)
		return
	}
	respondWithJSON(w, http.StatusOK, preference{Name: name, Value: v})
}

func (h *Handler) setPreference(w http.ResponseWriter, r *http.Request, name string) {
	var req preferenceRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}
	if req.Value == nil {
		respondWithError(w, http.StatusBadRequest, "Preference value is required")
		return
	}
	if err := h.prefs.SetBool(r.Context(), name, *req.Value); err != nil {
		h.fail(w, "Error saving preference", err)
		return
	}
	respondWithJSON(w, http.StatusOK, preference{Name: name, Value: *req.Value})
}
