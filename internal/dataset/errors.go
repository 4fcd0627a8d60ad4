package dataset

import "errors"

// ErrDataNotFound indicates the dataset root directory does not exist.
var ErrDataNotFound = errors.New("dataset directory not found")

// ErrEmptyDataset indicates neither keep/ nor exclude/ contained any images.
var ErrEmptyDataset = errors.New("no labeled images found")
