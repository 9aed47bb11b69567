package quic

import (
	log "github.com/dep2p/go-dep2p-quic/internal/util/logger"
)

var logger = log.Logger("transport/quic")
