package domain

import "errors"

// ErrMalformedTimestamp indica que o timestamp do evento não casa com
// nenhum dos dois formatos aceitos (com offset ou naive). O evento não é
// processado.
var ErrMalformedTimestamp = errors.New("malformed timestamp")
