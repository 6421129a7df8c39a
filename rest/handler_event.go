package rest

import (
	"encoding/json"
	"net/http"

	"github.com/crmkit/automation/model"
)

// HandleEvent is fire-and-forget for the caller: the response never waits on
// workflow completion and dispatch failures are never surfaced here.
func (s *Server) HandleEvent(w http.ResponseWriter, r *http.Request) {
	var event model.TriggerEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid event payload")
		return
	}
	defer r.Body.Close()
	if len(event.TenantId) == 0 || !model.ValidTriggerType(event.TriggerType) || len(event.EntityId) == 0 {
		respondWithError(w, http.StatusBadRequest, "tenantId, triggerType and entityId are required")
		return
	}
	s.dispatcher.Dispatch(event)
	respondOKWithoutBody(w)
}
