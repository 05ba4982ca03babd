package hangouts

import "sync"

// pupLocks serializa las mutaciones de calendario por pup: el chequeo de
// solapamiento y la escritura deben verse como una sola unidad, si no dos
// requests concurrentes que no chocan al leer pueden chocar al escribir.
type pupLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newPupLocks() *pupLocks {
	return &pupLocks{m: make(map[string]*sync.Mutex)}
}

func (p *pupLocks) lock(pupID string) func() {
	p.mu.Lock()
	l, ok := p.m[pupID]
	if !ok {
		l = &sync.Mutex{}
		p.m[pupID] = l
	}
	p.mu.Unlock()

	l.Lock()
	return l.Unlock
}
