/*
Package orm stores models in named buckets of a KVStore.

A bucket owns every key starting with its name followed by a colon and
holds a single model type. Models are addressed by a primary key given by
the caller or taken from the id sequence of the bucket. Splitters,
allocators and valves all live in sequence keyed buckets, so their ids
are 8 byte big endian counters starting at 1.
*/
package orm

import (
	"fmt"
	"regexp"
)

// SeqID names the id sequence of a bucket.
const SeqID = "id"

var validBucketName = regexp.MustCompile(`^[a-z_]{3,10}$`).MatchString

type bucket struct {
	name   string
	prefix []byte
}

// newBucket panics on a malformed name. Bucket names are constants of the
// extensions, never user input.
func newBucket(name string) bucket {
	if !validBucketName(name) {
		panic(fmt.Sprintf("invalid bucket name %q", name))
	}
	return bucket{name: name, prefix: []byte(name + ":")}
}

// dbKey returns prefix|key in a newly allocated slice.
func (b bucket) dbKey(key []byte) []byte {
	k := make([]byte, 0, len(b.prefix)+len(key))
	return append(append(k, b.prefix...), key...)
}
