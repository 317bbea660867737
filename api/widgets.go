package api

import (
	"fmt"
	"net/http"

	"dashboard-service/catalog"
	"dashboard-service/editor"
	"dashboard-service/models"
	"dashboard-service/tree"
)

type widgetRequest struct {
	Name       string                 `json:"name"`
	Components []models.ComponentNode `json:"components"`
	Tags       []string               `json:"tags"`
}

type addComponentRequest struct {
	Kind     string `json:"kind"`
	ParentID string `json:"parentId"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type nestRequest struct {
	ParentID string `json:"parentId"`
}

type componentsResponse struct {
	Components []models.ComponentNode `json:"components"`
	Count      int                    `json:"count"`
}

type moveResponse struct {
	Moved      bool                   `json:"moved"`
	Components []models.ComponentNode `json:"components"`
}

// WidgetsHandler routes requests for /widgets, /widgets/{id} and the
// component tree under /widgets/{id}/components.
func (h *Handler) WidgetsHandler(w http.ResponseWriter, r *http.Request) {
	parts := pathParts(r)
	if parts[0] != "widgets" {
		respondWithError(w, http.StatusNotFound, "Not found")
		return
	}

	switch {
	case len(parts) == 1:
		switch r.Method {
		case http.MethodGet:
			h.listWidgets(w, r)
		case http.MethodPost:
			h.createWidget(w, r)
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 2 && parts[1] != "":
		switch r.Method {
		case http.MethodGet:
			h.getWidget(w, parts[1])
		case http.MethodPut:
			h.updateWidget(w, r, parts[1])
		case http.MethodDelete:
			h.deleteWidget(w, r, parts[1])
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 3 && parts[2] == "components":
		switch r.Method {
		case http.MethodGet:
			h.listComponents(w, parts[1])
		case http.MethodPost:
			h.addComponent(w, r, parts[1])
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 4 && parts[2] == "components":
		switch r.Method {
		case http.MethodGet:
			h.getComponent(w, parts[1], parts[3])
		case http.MethodPut:
			h.updateComponent(w, r, parts[1], parts[3])
		case http.MethodDelete:
			h.deleteComponent(w, r, parts[1], parts[3])
		default:
			methodNotAllowed(w)
		}
	case len(parts) == 5 && parts[2] == "components" && (parts[4] == "move" || parts[4] == "nest"):
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		if parts[4] == "move" {
			h.moveComponent(w, r, parts[1], parts[3])
		} else {
			h.nestComponent(w, r, parts[1], parts[3])
		}
	default:
		respondWithError(w, http.StatusNotFound, "Not found")
	}
}

func widgetNotFound(w http.ResponseWriter, id string) {
	respondWithError(w, http.StatusNotFound, fmt.Sprintf("Widget %q not found", id))
}

func componentNotFound(w http.ResponseWriter, id string) {
	respondWithError(w, http.StatusNotFound, fmt.Sprintf("Component %q not found", id))
}

func (h *Handler) listWidgets(w http.ResponseWriter, r *http.Request) {
	q, err := parseQuery(r)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid query: "+err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, catalog.Apply(h.widgetCache.GetAll(), q))
}

func (h *Handler) getWidget(w http.ResponseWriter, id string) {
	widget, ok := h.widgetCache.GetByID(id)
	if !ok {
		widgetNotFound(w, id)
		return
	}
	respondWithJSON(w, http.StatusOK, widget)
}

func (h *Handler) createWidget(w http.ResponseWriter, r *http.Request) {
	var req widgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}
	widget := &models.Widget{Name: req.Name, Components: req.Components, Tags: req.Tags}
	if saved, ok := h.saveWidget(w, r, widget); ok {
		respondWithJSON(w, http.StatusCreated, saved)
	}
}

func (h *Handler) updateWidget(w http.ResponseWriter, r *http.Request, id string) {
	existing, ok := h.widgetCache.GetByID(id)
	if !ok {
		widgetNotFound(w, id)
		return
	}
	var req widgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	widget := existing.Clone()
	widget.Name = req.Name
	widget.Tags = req.Tags
	if req.Components != nil {
		widget.Components = req.Components
	}
	if saved, ok := h.saveWidget(w, r, widget); ok {
		respondWithJSON(w, http.StatusOK, saved)
	}
}

// saveWidget stores widget and refreshes the cache. On failure the error has
// already been written to w.
func (h *Handler) saveWidget(w http.ResponseWriter, r *http.Request, widget *models.Widget) (*models.Widget, bool) {
	saved, err := h.widgets.Save(r.Context(), widget)
	if err != nil {
		h.fail(w, "Error saving widget", err)
		return nil, false
	}
	h.widgetCache.Set(saved)
	return saved, true
}

// deleteWidget removes the widget and reports which dashboards still host it.
// Those layouts are left alone; their tabs render as missing widgets.
func (h *Handler) deleteWidget(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.widgets.Delete(r.Context(), id); err != nil {
		h.fail(w, "Error deleting widget", err)
		return
	}
	h.widgetCache.Delete(id)

	resp := map[string]interface{}{"message": "Widget deleted successfully"}
	if refs := h.dashboardsUsing(id); len(refs) > 0 {
		resp["referencedBy"] = refs
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// session opens an editor over the cached widget's components.
func (h *Handler) session(w http.ResponseWriter, id string) (*models.Widget, *editor.Session, bool) {
	widget, ok := h.widgetCache.GetByID(id)
	if !ok {
		widgetNotFound(w, id)
		return nil, nil, false
	}
	return widget, editor.NewSession(widget.Components), true
}

// commit stores the session's tree as the widget's components.
func (h *Handler) commit(w http.ResponseWriter, r *http.Request, widget *models.Widget, s *editor.Session) (*models.Widget, bool) {
	widget.Components = s.Components()
	return h.saveWidget(w, r, widget)
}

func (h *Handler) listComponents(w http.ResponseWriter, id string) {
	widget, ok := h.widgetCache.GetByID(id)
	if !ok {
		widgetNotFound(w, id)
		return
	}
	respondWithJSON(w, http.StatusOK, componentsResponse{
		Components: widget.Components,
		Count:      models.CountComponents(widget.Components),
	})
}

func (h *Handler) getComponent(w http.ResponseWriter, id, cid string) {
	_, s, ok := h.session(w, id)
	if !ok {
		return
	}
	node, found := s.Find(cid)
	if !found {
		componentNotFound(w, cid)
		return
	}
	respondWithJSON(w, http.StatusOK, node)
}

func (h *Handler) addComponent(w http.ResponseWriter, r *http.Request, id string) {
	var req addComponentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}
	kind, err := models.ParseKind(req.Kind)
	if err != nil {
		h.fail(w, "Error adding component", err)
		return
	}

	widget, s, ok := h.session(w, id)
	if !ok {
		return
	}
	node, found, err := s.Add(kind, req.ParentID)
	if err != nil {
		h.fail(w, "Error adding component", err)
		return
	}
	if !found {
		componentNotFound(w, req.ParentID)
		return
	}
	if _, ok := h.commit(w, r, widget, s); ok {
		respondWithJSON(w, http.StatusCreated, node)
	}
}

func (h *Handler) updateComponent(w http.ResponseWriter, r *http.Request, id, cid string) {
	var c models.Component
	if err := decodeJSON(w, r, &c); err != nil {
		failDecode(w, err)
		return
	}

	widget, s, ok := h.session(w, id)
	if !ok {
		return
	}
	found, err := s.Update(cid, c)
	if err != nil {
		h.fail(w, "Error updating component", err)
		return
	}
	if !found {
		componentNotFound(w, cid)
		return
	}
	if _, ok := h.commit(w, r, widget, s); ok {
		node, _ := s.Find(cid)
		respondWithJSON(w, http.StatusOK, node)
	}
}

func (h *Handler) deleteComponent(w http.ResponseWriter, r *http.Request, id, cid string) {
	widget, s, ok := h.session(w, id)
	if !ok {
		return
	}
	if !s.Delete(cid) {
		componentNotFound(w, cid)
		return
	}
	if _, ok := h.commit(w, r, widget, s); ok {
		respondWithJSON(w, http.StatusOK, map[string]string{"message": "Component deleted successfully"})
	}
}

// moveComponent shifts a component among its siblings. Moving past either end
// is not an error; the response reports moved=false and nothing is written.
func (h *Handler) moveComponent(w http.ResponseWriter, r *http.Request, id, cid string) {
	var req moveRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}
	dir, ok := tree.ParseDirection(req.Direction)
	if !ok {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid direction %q", req.Direction))
		return
	}

	widget, s, ok := h.session(w, id)
	if !ok {
		return
	}
	if _, found := s.Find(cid); !found {
		componentNotFound(w, cid)
		return
	}
	if !s.Move(cid, dir) {
		respondWithJSON(w, http.StatusOK, moveResponse{Moved: false, Components: s.Components()})
		return
	}
	if _, ok := h.commit(w, r, widget, s); ok {
		respondWithJSON(w, http.StatusOK, moveResponse{Moved: true, Components: s.Components()})
	}
}

func (h *Handler) nestComponent(w http.ResponseWriter, r *http.Request, id, cid string) {
	var req nestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		failDecode(w, err)
		return
	}

	widget, s, ok := h.session(w, id)
	if !ok {
		return
	}
	found, err := s.Nest(cid, req.ParentID)
	if err != nil {
		h.fail(w, "Error nesting component", err)
		return
	}
	if !found {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Component %q or container %q not found", cid, req.ParentID))
		return
	}
	if _, ok := h.commit(w, r, widget, s); ok {
		respondWithJSON(w, http.StatusOK, componentsResponse{
			Components: s.Components(),
			Count:      s.Count(),
		})
	}
}
