package port

import (
	"go.uber.org/zap"
)

// SetAdminState requests an administrative up or down transition.
// The transition runs on the port's admin goroutine, because device
// start/stop can block for long delays that must never stall a burst
// worker. Requests are applied in order; the call does not wait.
func (p *Port) SetAdminState(up bool) {
	p.adminC <- up
}

// IsUp reports the administrative state.
func (p *Port) IsUp() bool {
	p.upMutex.RLock()
	defer p.upMutex.RUnlock()
	return p.up
}

func (p *Port) adminLoop() {
	defer close(p.adminDone)
	for up := range p.adminC {
		if up == p.IsUp() {
			continue
		}

		if ad, ok := p.driver.(AdminDriver); ok {
			var e error
			if up {
				e = ad.Start()
			} else {
				e = ad.Stop()
			}
			if e != nil {
				logger.Warn("admin state change error",
					zap.String("port", p.name),
					zap.Bool("up", up),
					zap.Error(e),
				)
				continue
			}
		}

		p.upMutex.Lock()
		p.up = up
		p.upMutex.Unlock()
		logger.Info("admin state changed", zap.String("port", p.name), zap.Bool("up", up))
		if up {
			emitter.EmitSync(evtPortUp, p)
		} else {
			emitter.EmitSync(evtPortDown, p)
		}
	}
}
