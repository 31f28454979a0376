package runner

import "errors"

// ErrNoInput is returned when stdin is an interactive terminal and no other
// host source was configured, instead of blocking on the terminal.
var ErrNoInput = errors.New("no hosts: pipe a host list on stdin or use --list, --cidr or --domain")
