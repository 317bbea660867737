package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"dashboard-service/catalog"
	"dashboard-service/models"
)

type dashboardRequest struct {
	Name   string          `json:"name"`
	Layout json.RawMessage `json:"layout"`
	Tags   []string        `json:"tags"`
	Public bool            `json:"public"`
}

// DashboardsHandler routes requests for /dashboards and /dashboards/{id}.
func (h *Handler) DashboardsHandler(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r)

	switch {
	case len(parts) == 1 && parts[0] == "dashboards":
		switch r.Method {
		case http.MethodGet:
			h.listDashboards(w, r)
		case http.MethodPost:
			h.createDashboard(w, r)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[0] == "dashboards" && parts[1] != "":
		id := parts[1]
		switch r.Method {
		case http.MethodGet:
			h.getDashboard(w, id)
		case http.MethodPut:
			h.updateDashboard(w, r, id)
		case http.MethodDelete:
			h.deleteDashboard(w, r, id)
		default:
			methodNotAllowed(w)
		}
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

// parseQuery reads q, tag (repeatable), visibility, sort and order.
func parseQuery(r *http.Request) (catalog.Query, error) {
	values := r.URL.Query()

	vis, err := catalog.ParseVisibility(values.Get("visibility"))
	if err != nil {
		return catalog.Query{}, err
	}
	sortBy, err := catalog.ParseSort(values.Get("sort"))
	if err != nil {
		return catalog.Query{}, err
	}
	var desc bool
	switch order := strings.ToLower(values.Get("order")); order {
	case "", "asc":
	case "desc":
		desc = true
	default:
		return catalog.Query{}, fmt.Errorf("unknown order %q", order)
	}

	return catalog.Query{
		Search:     values.Get("q"),
		Tags:       values["tag"],
		Visibility: vis,
		SortBy:     sortBy,
		Desc:       desc,
	}, nil
}

func (h *Handler) listDashboards(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, catalog.Apply(h.dashboardCache.GetAll(), q))
}

func (h *Handler) getDashboard(w http.ResponseWriter, id string) {
	d, ok := h.dashboardCache.GetByID(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Dashboard %q not found", id))
		return
	}
	respondWithJSON(w, http.StatusOK, d)
}

func (h *Handler) createDashboard(w http.ResponseWriter, r *http.Request) {
	var req dashboardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}
	d := &models.Dashboard{Name: req.Name, Layout: req.Layout, Tags: req.Tags, Public: req.Public}
	h.saveDashboard(w, r, d, http.StatusCreated)
}

func (h *Handler) updateDashboard(w http.ResponseWriter, r *http.Request, id string) {
	existing, ok := h.dashboardCache.GetByID(id)
	if !ok {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Dashboard %q not found", id))
		return
	}
	var req dashboardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	d := existing.Clone()
	d.Name = req.Name
	d.Tags = req.Tags
	d.Public = req.Public
	if len(req.Layout) > 0 {
		d.Layout = req.Layout
	}
	h.saveDashboard(w, r, d, http.StatusOK)
}

func (h *Handler) saveDashboard(w http.ResponseWriter, r *http.Request, d *models.Dashboard, code int) {
	saved, err := h.dashboards.Save(r.Context(), d)
	if err != nil {
		h.fail(w, "Error saving dashboard", err)
		return
	}
	h.dashboardCache.Set(saved)
	respondWithJSON(w, code, saved)
}

func (h *Handler) deleteDashboard(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.dashboards.Delete(r.Context(), id); err != nil {
		h.fail(w, "Error deleting dashboard", err)
		return
	}
	h.dashboardCache.Delete(id)
	respondWithJSON(w, http.StatusOK, map[string]string{"message": "Dashboard deleted successfully"})
}

// dashboardsUsing lists the dashboards whose layout hosts widgetID.
func (h *Handler) dashboardsUsing(widgetID string) []string {
	var ids []string
	for _, d := range h.dashboardCache.GetAll() {
		refs, err := models.WidgetRefs(d.Layout)
		if err != nil {
			continue
		}
		if slices.Contains(refs, widgetID) {
			ids = append(ids, d.ID)
		}
	}
	return ids
}
