package main

import (
	"net/http"
	"strings"

	_ "net/http/pprof"

	"go.uber.org/zap"
)

const defaultPprofBind = ":6061"

func startPprofServer(bind string, logkit *zap.Logger) {
	addr := strings.TrimSpace(bind)
	if addr == "" {
		addr = defaultPprofBind
	}

	go func() {
		if err := http.ListenAndServe(addr, nil); err != nil {
			panic(err)
		}
	}()
	logkit.Debug("start pprof server", zap.String("bind", addr))
}
