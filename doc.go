/*
Package lnaddr resolves Lightning Addresses into payable BOLT11 invoices.

A Lightning Address is a `user@domain` identifier, as described by [LUD-16],
which maps onto an LNURL-pay endpoint served by `domain`. Resolving one takes
two HTTP round trips: a GET to the well-known discovery endpoint for the
service's payment parameters, followed by a GET to the advertised callback to
request an invoice for a concrete amount. The invoice's embedded amount and
metadata commitment are validated before it is handed back to the caller.

This package only obtains and validates invoices; paying them is out of
scope.

[LUD-16]: https://github.com/lnurl/luds/blob/luds/16.md
*/
package lnaddr
