// Package resources tracks named closable dependencies so that
// shutdown runs every closer even when some of them fail.
package resources

import (
	"go.uber.org/zap"
)

type closer struct {
	name string
	fn   func() error
}

// Manager collects closers registered at startup and releases them in
// reverse order on shutdown. Not safe for concurrent registration; the
// composition root registers everything before serving.
type Manager struct {
	logger  *zap.Logger
	closers []closer
}

// NewManager creates a resource manager.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{logger: logger}
}

// Register adds a named closer. Registration order is startup order;
// Close releases in the opposite order.
func (m *Manager) Register(name string, fn func() error) {
	m.closers = append(m.closers, closer{name: name, fn: fn})
}

// Close releases all registered resources. A failing or panicking
// closer is logged and never prevents the remaining ones from running.
func (m *Manager) Close() {
	for i := len(m.closers) - 1; i >= 0; i-- {
		m.close(m.closers[i])
	}
}

func (m *Manager) close(c closer) {
	defer func() {
		if rvr := recover(); rvr != nil {
			m.logger.Error("panic closing resource",
				zap.String("resource", c.name),
				zap.Any("panic", rvr))
		}
	}()

	if err := c.fn(); err != nil {
		m.logger.Error("failed to close resource",
			zap.String("resource", c.name),
			zap.Error(err))
		return
	}
	m.logger.Debug("resource closed", zap.String("resource", c.name))
}
