// Package iocache provides durable storage for cached reports and
// assessment run history across SQLite, MySQL and PostgreSQL backends.
package iocache

import (
	"sync"

	"github.com/entrain-io/entrain/internal/contract"
)

// StoreManager manages the report cache and assessment store instances.
type StoreManager struct {
	sync.RWMutex // Protects the store pointers during initialization
	cache        contract.CacheStore
	assessment   contract.AssessmentStore
}

var _ contract.CacheManager = &StoreManager{} // Compile-time check

// GetCacheStore returns the report CacheStore.
func (mgr *StoreManager) GetCacheStore() contract.CacheStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.cache
}

// GetAssessmentStore returns the AssessmentStore.
func (mgr *StoreManager) GetAssessmentStore() contract.AssessmentStore {
	mgr.RLock()
	defer mgr.RUnlock()
	return mgr.assessment
}
