package runtime

import (
	"os"

	"github.com/architeacher/catalog/internal/config"
)

type ServiceOption func(*ServiceCtx)

func WithServiceTermination(ch chan os.Signal) ServiceOption {
	return func(s *ServiceCtx) {
		s.shutdownChannel = ch
	}
}

func WithWaitingForServer() ServiceOption {
	return func(s *ServiceCtx) {
		s.serverReady = make(chan struct{})
	}
}

// WithConfigOverrides adjusts the loaded configuration before anything is
// wired, e.g. from command line flags.
func WithConfigOverrides(configure ...func(*config.ServiceConfig)) ServiceOption {
	return func(s *ServiceCtx) {
		s.configure = append(s.configure, configure...)
	}
}

// WithDependencyOptions runs extra dependency options after the defaults.
func WithDependencyOptions(opts ...DependencyOption) ServiceOption {
	return func(s *ServiceCtx) {
		s.dependencyOpts = append(s.dependencyOpts, opts...)
	}
}
