package root

import "errors"

var errNoDB = errors.New("index location must be given with -db")
