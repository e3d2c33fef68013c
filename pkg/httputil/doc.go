// Package httputil provides HTTP utilities for the storage and compile
// service clients.
//
// # Retry
//
// [Retry] re-runs an operation with exponential backoff while it fails with
// an error wrapped by [Retryable]. Clients wrap:
//
//   - Network errors
//   - Responses for which [RetryableStatus] is true (408, 413, 429, 5xx)
//
// Anything else, including a cancelled context, ends the loop at once:
//
//	err := httputil.Retry(ctx, 3, 500*time.Millisecond, func() error {
//	    resp, err := client.Do(req)
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// # Defaults
//
// [RetryWithBackoff] uses 3 attempts starting at 1 second.
package httputil
