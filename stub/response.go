package stub

import "github.com/tidwall/sjson"

// JSONPatchProducer returns a ResponseProducer that starts from base and
// overlays each path/value pair in patches using sjson's dotted-path set
// syntax, producing an application/json StubResponse at statusCode. Paths
// that don't yet exist in base are created (spec.md §3's dynamic
// ResponseProducer, specialized for the common "echo the request shape back
// with a couple of fields swapped" stub).
func JSONPatchProducer(statusCode int, base []byte, patches map[string]string) ResponseProducer {
	return func(req *Request, rule *StubRule) StubResponse {
		body := base
		for path, value := range patches {
			patched, err := sjson.SetBytes(body, path, value)
			if err != nil {
				return StubResponse{FailureError: err}
			}
			body = patched
		}
		return StubResponse{StatusCode: statusCode, ContentType: "application/json", Body: body}
	}
}

// JSONPatchFromRequestProducer is JSONPatchProducer seeded with the
// matched request's own body, for stubs that echo the caller's payload back
// with server-assigned fields (an id, a status) merged in.
func JSONPatchFromRequestProducer(statusCode int, patches map[string]string) ResponseProducer {
	return func(req *Request, rule *StubRule) StubResponse {
		base := []byte("{}")
		if req != nil && len(req.Body) > 0 {
			base = req.Body
		}
		return JSONPatchProducer(statusCode, base, patches)(req, rule)
	}
}
