package embedding

import "errors"

// ErrDimMismatch indicates two vectors have different dimensions.
var ErrDimMismatch = errors.New("embedding dimension mismatch")
