/*
Package cash is the asset ledger: every owner address holds a wallet
with a balance per asset.

There is no logic in the coins, except that the balance of any asset
may not go below zero and may not overflow. Other extensions move
funds through the Controller, external callers through SendMsg.
*/
package cash
