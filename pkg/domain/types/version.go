package types

// AppName is the service name used in logs, health responses and metrics.
const AppName = "shipwright"

// Version is overwritten at build time:
//
//	go build -ldflags "-X github.com/m-mizutani/shipwright/pkg/domain/types.Version=v1.2.3"
var Version = "v0.0.1"
