package storage

import "clipforge/internal/ports"

// Provider is the publishing contract used by the API and the render
// supervisor. It is an alias to ports.StorageProvider to keep call-sites
// simple.
type Provider = ports.StorageProvider
