package admin

import "github.com/aquaponto/aquaponto/internal/provider"

// Handler marketplace administration API entry point
type Handler struct {
	*provider.Container
}

// New creates the admin handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
