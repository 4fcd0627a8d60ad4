package blocklist

import "errors"

// ErrDuplicateEntry indicates the computed perceptual hash is already in the
// blocklist. The existing entry stands; the new image needs no second entry.
var ErrDuplicateEntry = errors.New("image hash already blocklisted")
