package store

import "github.com/okatau/tsm"

// Move references for all storage types into this package
// for shorter names everywhere

type (
	ReadOnlyKVStore  = tsm.ReadOnlyKVStore
	SetDeleter       = tsm.SetDeleter
	KVStore          = tsm.KVStore
	Batch            = tsm.Batch
	Iterator         = tsm.Iterator
	CacheableKVStore = tsm.CacheableKVStore
	KVCacheWrap      = tsm.KVCacheWrap
	CommitKVStore    = tsm.CommitKVStore
	CommitID         = tsm.CommitID
	Model            = tsm.Model
)
