package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/hashicorp/go-multierror"
	"github.com/yukr-lang/yukr"
)

// ContainerExt is the file extension of compiled containers.
const ContainerExt = ".ykc"

var red = color.New(color.FgRed).SprintFunc()

// loadProgram reads a compiled container, or compiles a source file when
// fromSource is set.
func (a *app) loadProgram(path string, fromSource bool, opts ...yukr.Option) (*yukr.Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if fromSource {
		opts = append(opts, yukr.WithFilename(filepath.Base(path)))
		return yukr.Compile(string(data), opts...)
	}
	program, err := yukr.Load(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return program, nil
}

// containerPath returns where the container compiled from src is written.
func containerPath(src, outDir string) string {
	base := filepath.Base(src)
	name := strings.TrimSuffix(base, filepath.Ext(base)) + ContainerExt
	if outDir == "" {
		return filepath.Join(filepath.Dir(src), name)
	}
	return filepath.Join(outDir, name)
}

func formatErrors(errs []error) string {
	msgs := make([]string, 0, len(errs))
	for _, err := range errs {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "\n")
}

func newErrors() *multierror.Error {
	return &multierror.Error{ErrorFormat: formatErrors}
}
