package pix

import "github.com/op/go-logging"

var log = logging.MustGetLogger("pix")
