package accesslog

import (
	"errors"
	"io"
	"net"
	"os"
)

type AccessLogger interface {
	Log(entry *Entry)
}

type Options struct {
	File    string
	Format  string
	Colored bool
}

func NewAccessLogger(name string, opts Options) (AccessLogger, error) {
	var writer io.Writer = os.Stdout
	if opts.File != "" && opts.File != "/dev/stdout" {
		file, err := os.OpenFile(opts.File, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0664)
		if err != nil {
			return nil, err
		}
		writer = file
	}

	switch opts.Format {
	case "text":
		return NewTextLogger(name, writer, opts.Colored), nil
	case "json":
		return NewJsonLogger(name, writer), nil
	default:
		return nil, errors.New("invalid format: " + opts.Format)
	}
}

func parseHostPort(hostport string) (string, string) {
	host, port, err := net.SplitHostPort(hostport)
	if err != nil {
		return hostport, ""
	}
	return host, port
}
