package rest

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/crmkit/automation/logger"
	"github.com/crmkit/automation/model"
	"github.com/crmkit/automation/persistence"
	"go.uber.org/zap"
)

func (s *Server) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf model.Workflow
	if err := json.NewDecoder(r.Body).Decode(&wf); err != nil {
		respondWithError(w, http.StatusBadRequest, "invalid workflow payload")
		return
	}
	defer r.Body.Close()
	saved, err := s.metadataService.Save(wf)
	if err != nil {
		logger.Error("error saving workflow", zap.String("name", wf.Name), zap.Error(err))
		respondWithError(w, http.StatusBadRequest, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"id": saved.Id})
}

func (s *Server) HandleGetWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	wf, err := s.metadataService.Get(vars["tenantId"], vars["id"])
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, wf)
}

func (s *Server) HandleDeleteWorkflow(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if err := s.metadataService.Delete(vars["tenantId"], vars["id"]); err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondOKWithoutBody(w)
}
