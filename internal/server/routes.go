package server

import "topichat/internal/middleware"

// RegisterRoutes wires up every HTTP and WebSocket endpoint.
func (s *Server) RegisterRoutes() {
	s.E.GET("/", s.infoHandler.Root)
	s.E.GET("/health", s.infoHandler.Health)
	s.E.GET("/topics", s.infoHandler.Topics)
	s.E.GET("/stats", s.infoHandler.Stats)
	s.E.GET("/client", s.infoHandler.Client)

	s.E.GET("/ws", s.wsHandler.Handle, middleware.UpgradeRateLimiter())
}
