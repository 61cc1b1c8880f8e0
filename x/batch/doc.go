/*
Package batch implements batch transactions.

A batch transaction holds a list of messages that the application can
process. The transaction fails if any of the messages fail to be
processed, and because the whole transaction runs inside one savepoint
none of the messages is applied in that case. Signatures and other
decorators that do not rely on messages are applied once per
transaction.

Batches are how several triggers are executed in a fixed order, for
example filling two valves that share allocators.
*/
package batch
