package syncserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// serverInfoView is the payload for GET /api/server/info.
type serverInfoView struct {
	Port            int `json:"port"`
	ConnectedClients int `json:"connected_clients"`
}

func (s *Server) serverInfo(c echo.Context) error {
	s.clientsMu.RLock()
	n := len(s.clients)
	s.clientsMu.RUnlock()
	return c.JSON(http.StatusOK, serverInfoView{Port: s.port, ConnectedClients: n})
}

func (s *Server) serverClients(c echo.Context) error {
	return c.JSON(http.StatusOK, s.snapshotClients())
}
