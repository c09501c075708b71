package api

import (
	"serwer-cytatow/internal/config"
	"serwer-cytatow/internal/database"
	"serwer-cytatow/internal/websocket"
)

type Server struct {
	config *config.Config
	store  *database.PostgresStore
	wsHub  *websocket.Hub
}

func NewServer(cfg *config.Config, store *database.PostgresStore, wsHub *websocket.Hub) *Server {
	return &Server{
		config: cfg,
		store:  store,
		wsHub:  wsHub,
	}
}
