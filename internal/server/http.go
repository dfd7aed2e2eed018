package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"autoref-server/internal/engine"
	"autoref-server/internal/network"
	"autoref-server/internal/version"
	"autoref-server/pkg/logger"

	"github.com/sirupsen/logrus"
)

type Server struct {
	Referee *engine.Referee
	Hub     *network.Broadcaster
	Port    string

	// Лимит команд тренера с одного монитора, команд/сек
	CommandRate float64

	http *http.Server
	log  *logrus.Entry
}

func New(referee *engine.Referee, hub *network.Broadcaster, port string, commandRate float64) *Server {
	s := &Server{
		Referee:     referee,
		Hub:         hub,
		Port:        port,
		CommandRate: commandRate,
		log:         logger.Component("http"),
	}
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes собирает все эндпоинты судьи.
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws/monitor", enableCORS(s.handleMonitorWS))
	mux.HandleFunc("/ws/physics", s.handlePhysicsWS)
	mux.HandleFunc("/health", enableCORS(s.handleHealth))
	mux.HandleFunc("/version", enableCORS(s.handleVersion))

	debugHandler := NewDebugHandler(s.Referee)
	debugHandler.RegisterRoutes(mux)
	return mux
}

// Run запускает HTTP сервер и блокируется до Shutdown.
func (s *Server) Run() error {
	s.log.WithField("match_id", s.Referee.ID).Infof("Autoref server running on :%s", s.Port)
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown останавливает прием соединений.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.http.Shutdown(ctx)
}

func enableCORS(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		next(w, r)
	}
}

// handleMonitorWS - монитор: события матча наружу, команды тренера внутрь.
func (s *Server) handleMonitorWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("Upgrade error")
		return
	}

	client := NewMonitorClient(s.Referee, s.Hub, conn, s.CommandRate)

	// Запускаем пампы
	go client.writePump()
	go client.readPump()
}

// handlePhysicsWS - поток кадров от физического сервера.
func (s *Server) handlePhysicsWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Error("Upgrade error")
		return
	}

	feed := NewPhysicsFeed(s.Referee, conn)
	go feed.readPump()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	select {
	case <-s.Referee.Done():
		http.Error(w, "referee stopped", http.StatusServiceUnavailable)
		return
	default:
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(version.Info())
}
