package providers

import "time"

// shutdownTimeout bounds the graceful shutdown of each managed service.
const shutdownTimeout = 30 * time.Second
