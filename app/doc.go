/*
Package app contains the building blocks of an application: a Router
dispatching messages to handlers by path, a chain of decorators wrapped
around it, genesis loading and the App type that executes transactions
against a committing store.

Every delivered transaction runs in its own cache wrap which is written
only when the handler succeeds.
*/
package app
