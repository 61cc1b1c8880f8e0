/*
Package x contains the pieces shared by all extensions.

Extensions implement common functionality (Handler, Decorator,
Initializer) and are combined together in app to construct the
ledger. Handlers never decide who signed a transaction by themselves,
an Authenticator is passed into their constructor instead.
*/
package x
