package config

import "errors"

// ErrConfigInvalid is returned (possibly wrapped, with %w, for more
// detail) whenever the configuration file is missing, malformed, or
// missing a required attribute. Per spec, the caller's only obligation on
// seeing this error is to print the fixed user-facing message and exit
// zero — the detail wrapped around it is for logs/tests, not the user.
var ErrConfigInvalid = errors.New("invalid pipeyard configuration")
