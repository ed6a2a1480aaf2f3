package http

// Plain-text bodies of the fixed responses.
const (
	BodyOK             = "OK"
	BodyObjectNotFound = "Object Not Found"
	BodyRouteNotFound  = "Route Not Found."
	BodyInternalError  = "Internal Server Error"
)
