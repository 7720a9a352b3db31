// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// All API responses share one envelope:
//
//	{success, message?, completeProfile?, pagination?, data?, token?}
//
// Optional fields are omitted when unset and callers depend on their absence,
// so per-operation shapes must not be normalized.
//
// # Response Helpers
//
//	httputil.WriteEnvelope(w, http.StatusCreated, httputil.Envelope{Success: true, Data: doc})
//	httputil.WriteSuccess(w, doc)
//	httputil.WriteAPIError(w, apierr.NotFound("lesson not found"))
//
// WriteAPIError is the single place errors become responses: typed apierr
// values keep their status, anything else is masked as a 500.
//
// # Request Parsing
//
//	var body map[string]any
//	if err := httputil.ParseJSON(r, &body); err != nil {
//		httputil.WriteBadRequest(w, err.Error())
//		return
//	}
//	page := httputil.ParseQueryInt(r, "page", 1)
package httputil
