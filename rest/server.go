package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/crmkit/automation/dispatcher"
	"github.com/crmkit/automation/logger"
	"github.com/crmkit/automation/metadata"
	"github.com/crmkit/automation/persistence"
	"go.uber.org/zap"
)

type Server struct {
	http.Server
	Port            int
	metadataService *metadata.Service
	dispatcher      *dispatcher.Dispatcher
	executions      persistence.ExecutionRepository
	executionLogs   persistence.ExecutionLogRepository
}

func NewServer(httpPort int, metadataService *metadata.Service, disp *dispatcher.Dispatcher, storage persistence.Storage) (*Server, error) {
	s := &Server{
		Server: http.Server{
			Addr:        fmt.Sprintf(":%d", httpPort),
			IdleTimeout: 2 * time.Second,
		},
		Port:            httpPort,
		metadataService: metadataService,
		dispatcher:      disp,
		executions:      storage.Executions(),
		executionLogs:   storage.ExecutionLogs(),
	}

	router := mux.NewRouter()
	router.HandleFunc("/metadata/workflow", s.HandleCreateWorkflow).Methods(http.MethodPost)
	router.HandleFunc("/metadata/workflow/{tenantId}/{id}", s.HandleGetWorkflow).Methods(http.MethodGet)
	router.HandleFunc("/metadata/workflow/{tenantId}/{id}", s.HandleDeleteWorkflow).Methods(http.MethodDelete)

	router.HandleFunc("/event", s.HandleEvent).Methods(http.MethodPost)

	router.HandleFunc("/execution/{tenantId}/{id}", s.HandleGetExecution).Methods(http.MethodGet)
	router.HandleFunc("/execution/{tenantId}/{id}/logs", s.HandleGetExecutionLogs).Methods(http.MethodGet)

	router.Use(loggingMiddleware)
	s.Handler = router
	return s, nil
}

func (s *Server) Start() error {
	logger.Info("starting http server on", zap.Int("port", s.Port))
	if err := s.ListenAndServe(); err != nil {
		return err
	}
	return nil
}

func (s *Server) Stop() error {
	logger.Info("stopping http server")
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := s.Shutdown(ctx)
	if err != nil {
		logger.Error("error shutting down http server")
	}
	return nil
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger.Info(r.RequestURI)
		next.ServeHTTP(w, r)
	})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

func respondOKWithoutBody(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
}

func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, map[string]string{"error": message})
}
