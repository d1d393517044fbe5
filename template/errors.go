package template

import "errors"

// ErrUnknownTemplate is returned by Load for a name not in Names().
var ErrUnknownTemplate = errors.New("template: unknown template name")
