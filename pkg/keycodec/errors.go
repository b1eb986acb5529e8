package keycodec

import "errors"

var ErrInvalidKeyFormat = errors.New("invalid key format")
