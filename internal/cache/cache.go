package cache

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Dedupe remembers the ids of the most recently processed events so a
// redelivered event can be skipped. Old ids are evicted once size is reached.
type Dedupe struct {
	lru *lru.Cache[string, struct{}]
}

func New(size int) (*Dedupe, error) {
	c, err := lru.New[string, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &Dedupe{lru: c}, nil
}

// Seen reports whether id was added before. It does not refresh recency.
func (d *Dedupe) Seen(id string) bool {
	return d.lru.Contains(id)
}

func (d *Dedupe) Add(id string) {
	d.lru.Add(id, struct{}{})
}

func (d *Dedupe) Len() int {
	return d.lru.Len()
}
