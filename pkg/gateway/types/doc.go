// Package types defines the canonical response envelope returned by every
// gateway endpoint, together with the machine-readable error codes used to
// classify failures.
//
// Whatever shape an upstream service answers with (bare array, wrapped
// object, paginated object, HTML error page), the client always receives:
//
//	{
//	  "success": true,
//	  "message": "ok",
//	  "data": [...],
//	  "pagination": {"page": 1, "per_page": 20, "total": 134}
//	}
//
// or, on failure:
//
//	{
//	  "success": false,
//	  "message": "An internal system error occurred.",
//	  "data": null,
//	  "code": "INTERNAL_ERROR"
//	}
//
// The envelope is the outward contract of the gateway; nothing else ever
// crosses the boundary to the browser.
package types
