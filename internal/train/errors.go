package train

import "errors"

// ErrNoUsableSamples indicates every image in the dataset failed embedding
// extraction, leaving nothing to train on.
var ErrNoUsableSamples = errors.New("no usable samples after extraction")

// ErrRetrainInFlight indicates another retrain holds the model lock.
var ErrRetrainInFlight = errors.New("another retrain is in progress")
