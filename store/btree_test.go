package store

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertGetHas(t testing.TB, kv ReadOnlyKVStore, key, val []byte, has bool) {
	t.Helper()
	got, err := kv.Get(key)
	require.NoError(t, err)
	assert.Equal(t, val, got)
	exists, err := kv.Has(key)
	require.NoError(t, err)
	assert.Equal(t, has, exists)
}

// TestBTreeCacheGetSet does basic sanity checks on our cache
func TestBTreeCacheGetSet(t *testing.T) {
	// devnull is a black hole... just to keep our types proper
	devnull := BTreeCacheable{EmptyKVStore{}}

	// base is the root of our data, we can layer on top and
	// all queries should work
	base := devnull.CacheWrap()

	k, v := []byte("french"), []byte("fry")
	assertGetHas(t, base, k, nil, false)
	require.NoError(t, base.Set(k, v))
	assertGetHas(t, base, k, v, true)

	// now layer another btree on top and make sure that we get
	// base data
	cache := base.CacheWrap()
	assertGetHas(t, cache, k, v, true)

	// writing more data is only visible in the cache
	k2, v2 := []byte("LA"), []byte("Dodgers")
	assertGetHas(t, cache, k2, nil, false)
	require.NoError(t, cache.Set(k2, v2))
	assertGetHas(t, cache, k2, v2, true)
	assertGetHas(t, base, k2, nil, false)

	// we can write the cache to the base layer...
	require.NoError(t, cache.Write())
	assertGetHas(t, base, k, v, true)
	assertGetHas(t, base, k2, v2, true)

	// we can discard one
	k3, v3 := []byte("Bayern"), []byte("Munich")
	c2 := base.CacheWrap()
	require.NoError(t, c2.Set(k3, v3))
	require.NoError(t, c2.Delete(k))
	assertGetHas(t, c2, k, nil, false)
	assertGetHas(t, c2, k3, v3, true)
	c2.Discard()
	assertGetHas(t, base, k, v, true)
	assertGetHas(t, base, k3, nil, false)

	// and commit another
	c3 := base.CacheWrap()
	require.NoError(t, c3.Delete(k))
	require.NoError(t, c3.Set(k3, v3))
	require.NoError(t, c3.Write())
	assertGetHas(t, base, k, nil, false)
	assertGetHas(t, base, k3, v3, true)
}

func collect(t testing.TB, it Iterator) []Model {
	t.Helper()
	defer it.Close()
	var res []Model
	for it.Valid() {
		res = append(res, Model{Key: it.Key(), Value: it.Value()})
		require.NoError(t, it.Next())
	}
	return res
}

func TestBTreeCacheIterator(t *testing.T) {
	base := MemStore()
	for _, k := range []string{"a", "c", "e", "g"} {
		require.NoError(t, base.Set([]byte(k), []byte("base-"+k)))
	}

	cache := base.CacheWrap()
	require.NoError(t, cache.Set([]byte("b"), []byte("cache-b")))
	require.NoError(t, cache.Set([]byte("c"), []byte("cache-c")))
	require.NoError(t, cache.Delete([]byte("e")))
	require.NoError(t, cache.Delete([]byte("x")))

	cases := map[string]struct {
		start, end []byte
		reverse    bool
		want       []Model
	}{
		"full ascending range": {
			want: []Model{
				{Key: []byte("a"), Value: []byte("base-a")},
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("c"), Value: []byte("cache-c")},
				{Key: []byte("g"), Value: []byte("base-g")},
			},
		},
		"full descending range": {
			reverse: true,
			want: []Model{
				{Key: []byte("g"), Value: []byte("base-g")},
				{Key: []byte("c"), Value: []byte("cache-c")},
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("a"), Value: []byte("base-a")},
			},
		},
		"bounded range excludes end": {
			start: []byte("b"),
			end:   []byte("g"),
			want: []Model{
				{Key: []byte("b"), Value: []byte("cache-b")},
				{Key: []byte("c"), Value: []byte("cache-c")},
			},
		},
		"range only over deleted keys": {
			start: []byte("d"),
			end:   []byte("f"),
			want:  nil,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			var (
				it  Iterator
				err error
			)
			if tc.reverse {
				it, err = cache.ReverseIterator(tc.start, tc.end)
			} else {
				it, err = cache.Iterator(tc.start, tc.end)
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, collect(t, it))
		})
	}
}

func TestCacheWrapLayers(t *testing.T) {
	Convey("Given a memory store with one value", t, func() {
		base := MemStore()
		So(base.Set([]byte("alpha"), []byte("one")), ShouldBeNil)

		Convey("Nested cache writes propagate one layer at a time", func() {
			outer := base.CacheWrap()
			inner := outer.CacheWrap()
			So(inner.Set([]byte("beta"), []byte("two")), ShouldBeNil)

			got, err := outer.Get([]byte("beta"))
			So(err, ShouldBeNil)
			So(got, ShouldBeNil)

			So(inner.Write(), ShouldBeNil)
			got, err = outer.Get([]byte("beta"))
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []byte("two"))

			has, err := base.Has([]byte("beta"))
			So(err, ShouldBeNil)
			So(has, ShouldBeFalse)

			So(outer.Write(), ShouldBeNil)
			has, err = base.Has([]byte("beta"))
			So(err, ShouldBeNil)
			So(has, ShouldBeTrue)
		})

		Convey("Discarded deletes leave the value in place", func() {
			c := base.CacheWrap()
			So(c.Delete([]byte("alpha")), ShouldBeNil)
			c.Discard()

			got, err := base.Get([]byte("alpha"))
			So(err, ShouldBeNil)
			So(got, ShouldResemble, []byte("one"))
		})
	})
}
