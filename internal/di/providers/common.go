// Package providers contains dependency injection providers for the Barkeep server.
package providers

import "time"

// Version is the server version reported by the API.
const Version = "0.1.0"

// shutdownTimeout bounds graceful shutdown of long-lived components.
const shutdownTimeout = 10 * time.Second
