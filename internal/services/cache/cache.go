// Package cache keeps recently computed diagnoses in memory.
package cache

import (
	"sort"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"taxfree-engine/internal/models"
)

// DefaultTTL is used when a non-positive TTL is given.
const DefaultTTL = 15 * time.Minute

// DiagnosisCache is an expiring id → diagnosis map, safe for concurrent use.
type DiagnosisCache struct {
	items *gocache.Cache
}

// New creates a cache whose entries expire after ttl.
func New(ttl time.Duration) *DiagnosisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &DiagnosisCache{items: gocache.New(ttl, 2*ttl)}
}

// Get returns a copy of the cached diagnosis.
func (c *DiagnosisCache) Get(id string) (*models.Diagnosis, bool) {
	v, ok := c.items.Get(id)
	if !ok {
		return nil, false
	}
	d := v.(models.Diagnosis)
	return &d, true
}

// Set stores a diagnosis under its id with the default expiration.
func (c *DiagnosisCache) Set(d *models.Diagnosis) {
	if d == nil || d.ID == "" {
		return
	}
	c.items.Set(d.ID, *d, gocache.DefaultExpiration)
}

// Delete drops one diagnosis.
func (c *DiagnosisCache) Delete(id string) {
	c.items.Delete(id)
}

// Flush drops everything.
func (c *DiagnosisCache) Flush() {
	c.items.Flush()
}

// Len returns the number of live entries.
func (c *DiagnosisCache) Len() int {
	return c.items.ItemCount()
}

// Recent lists cached diagnoses, newest first. It backs listings in demo mode.
func (c *DiagnosisCache) Recent(limit int) []models.Diagnosis {
	items := c.items.Items()
	out := make([]models.Diagnosis, 0, len(items))
	for _, item := range items {
		if d, ok := item.Object.(models.Diagnosis); ok {
			out = append(out, d)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out
}
