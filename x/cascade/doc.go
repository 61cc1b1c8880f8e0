/*
Package cascade implements capacity bounded allocators filled in priority
order.

An allocator accepts funds until the sum of everything credited to it
reaches its ceiling. Its fullness aggregates every asset it received.
A valve holds funds at its own address and, when filled, walks its
ordered list of allocators. Each allocator takes what fits and the rest
flows to the next one. Whatever no allocator accepts stays on the valve.

The same allocator can be listed by many valves. Every credit reloads
the allocator from the store, so room consumed by one valve is seen by
all others. Because of that the end state depends on the order in which
valves are filled.

Allocators and valves are created by a factory. The factory owner
creates instances and maintains the list of accepted assets, which is
also used by valves that do not track assets of their own.
*/
package cascade
