// Package errors provides structured errors for vloop.
//
// Every error raised by the runtime, the scheduler, the renderer, the wire
// codec or the CLI carries a code that maps to a registered template:
//
//   - E1xx: reactive (observation, tracking)
//   - E2xx: scheduler (flush limit, job panics, loop)
//   - E3xx: render (component render and lifecycle failures)
//   - E4xx: protocol (frame decoding)
//   - E5xx: config and CLI
//
// # Usage
//
//	err := errors.New("E203").
//	    Wrap(cause).
//	    WithDetail("job \"update\" panicked")
//
//	fmt.Println(err.Format())
//	// Output:
//	// ERROR E203: Scheduled job panicked
//	//
//	//   job "update" panicked
//	//
//	//   Learn more: https://vloop.dev/docs/errors/E203
package errors
