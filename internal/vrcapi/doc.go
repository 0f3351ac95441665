// Package vrcapi looks world metadata up from the VRChat web API.
//
// The archiver only needs the public world endpoint, which requires no
// authentication. The client treats the service as a narrow black box: given
// an identifier it returns a World or ErrWorldNotFound. Retries and backoff
// are deliberately not implemented here; callers decide whether a miss is
// worth a manual-entry fallback.
package vrcapi
