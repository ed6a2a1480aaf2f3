package keybackend

import "errors"

// ErrUnsupportedType is returned for an unknown name store type.
var ErrUnsupportedType = errors.New("unsupported name store type")
