package public

import "github.com/aquaponto/aquaponto/internal/provider"

// Handler storefront, guest and customer API entry point
type Handler struct {
	*provider.Container
}

// New creates the public handler
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
