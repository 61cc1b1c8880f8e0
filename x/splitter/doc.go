/*
Package splitter implements stream splitters.

A splitter holds funds at its own address. When split, the whole balance
of every tracked asset is divided between its streams proportionally to
the stream weights. Each share is rounded down, so a small remainder can
stay on the splitter. It is not assigned to any stream and is included in
the next split.

A stream recipient is either an address or a cascade allocator. An
allocator accepts only what fits below its ceiling. The part it refuses
stays on the splitter as well.
*/
package splitter
