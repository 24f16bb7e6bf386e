package distributor

import "github.com/aquaponto/aquaponto/internal/provider"

// Handler distributor dashboard API entry point
type Handler struct {
	*provider.Container
}

// New creates the distributor handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
