// Package backend provides a driven.Backend over the backend REST API.
//
// Every response uses the envelope
//
//	{"success": bool, "data": ..., "message": "...", "errorCode": "...", "errors": {...}}
//
// A non-2xx status or success=false is returned as *domain.BackendError.
package backend
