package rest

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/crmkit/automation/persistence"
)

func (s *Server) HandleGetExecution(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	ex, err := s.executions.Get(vars["tenantId"], vars["id"])
	if err != nil {
		if _, ok := err.(persistence.NotFoundError); ok {
			respondWithError(w, http.StatusNotFound, err.Error())
			return
		}
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, ex)
}

func (s *Server) HandleGetExecutionLogs(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	logs, err := s.executionLogs.FindByExecution(vars["tenantId"], vars["id"])
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondWithJSON(w, http.StatusOK, logs)
}
