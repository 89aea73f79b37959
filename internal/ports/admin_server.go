package ports

// AdminServer defines the interface for the outward-facing admin API surface
type AdminServer interface {
	// Start starts serving requests
	Start() error

	// Stop gracefully stops the server
	Stop() error
}
