/*
Package tsm defines the interfaces used throughout the module, such as
storage, messages, handlers and authentication conditions.

Everything that moves value is built as an extension under x/. Each
extension declares messages, handlers that process them against a KVStore,
and models persisted with the orm package. The app package chains handlers
with decorators that recover panics, log and isolate every message inside a
savepoint, so that a message is either applied completely or not at all.
*/
package tsm
