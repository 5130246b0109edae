package ioformat

import (
	"context"

	"github.com/schemaforge/schemaforge/model"
)

// Stream loads data with l and yields the resulting DataInstances through a
// bounded channel of capacity bufSize (§5 "Backpressure": "Loaders
// yielding records to the validator do so through a bounded channel; when
// full, the loader blocks until the validator drains it"). bufSize <= 0
// defaults to 1 (synchronous handoff, still bounded).
//
// The returned error channel receives at most one error and is closed
// after the instance channel is closed.
func Stream(ctx context.Context, l Loader, data []byte, schema *model.Schema, opts *Options, bufSize int) (<-chan DataInstance, <-chan error) {
	if bufSize <= 0 {
		bufSize = 1
	}
	out := make(chan DataInstance, bufSize)
	errc := make(chan error, 1)

	go func() {
		defer close(errc)
		defer close(out)

		instances, err := l.LoadBytes(data, schema, opts)
		if err != nil {
			errc <- err
			return
		}
		for _, inst := range instances {
			select {
			case out <- inst:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return out, errc
}

// Drain collects every instance from a Stream channel pair into a slice,
// returning the first error observed (if any). It exists mainly for tests
// and simple callers that don't need true streaming consumption.
func Drain(instances <-chan DataInstance, errc <-chan error) ([]DataInstance, error) {
	var out []DataInstance
	for inst := range instances {
		out = append(out, inst)
	}
	if err := <-errc; err != nil {
		return out, err
	}
	return out, nil
}
