// Copyright 2015, Joe Tsai. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE.md file.

package netcodec

import "runtime"

// Kind classifies why a call failed, independent of the message text. Callers
// that need to branch on failure type should compare Kind, not the error
// string.
type Kind int

const (
	_ Kind = iota
	KindNoMem
	KindTooBig
	KindCorrupt
	KindDictInvalid
	KindBufSmall
	KindCtxNull
	KindUnsupported
	KindVersion
	KindInvalidArg
)

var kindStrings = map[Kind]string{
	KindNoMem:       "out of memory",
	KindTooBig:      "payload exceeds maximum size",
	KindCorrupt:     "corrupt input",
	KindDictInvalid: "dictionary blob invalid",
	KindBufSmall:    "destination buffer too small",
	KindCtxNull:     "context is nil",
	KindUnsupported: "feature not supported",
	KindVersion:     "version mismatch",
	KindInvalidArg:  "invalid argument",
}

func (k Kind) String() string {
	if s, ok := kindStrings[k]; ok {
		return s
	}
	return "unknown error"
}

// Error is the error type returned by every exported operation. Callers that
// need programmatic dispatch should use errors.As to recover the Kind.
type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	if e.msg != "" {
		return "netcodec: " + e.msg
	}
	return "netcodec: " + e.Kind.String()
}

// Is reports whether target is an *Error of the same Kind, so callers may
// write errors.Is(err, netcodec.ErrCorrupt) against the sentinel values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func errOf(k Kind, msg string) error { return &Error{Kind: k, msg: msg} }

// Sentinel errors for use with errors.Is. Each carries only a Kind; compare
// against these rather than constructing an *Error directly.
var (
	ErrNoMem       error = &Error{Kind: KindNoMem}
	ErrTooBig      error = &Error{Kind: KindTooBig}
	ErrCorrupt     error = &Error{Kind: KindCorrupt}
	ErrDictInvalid error = &Error{Kind: KindDictInvalid}
	ErrBufSmall    error = &Error{Kind: KindBufSmall}
	ErrCtxNull     error = &Error{Kind: KindCtxNull}
	ErrUnsupported error = &Error{Kind: KindUnsupported}
	ErrVersion     error = &Error{Kind: KindVersion}
	ErrInvalidArg  error = &Error{Kind: KindInvalidArg}
)

// errRecover is deferred at the single top-level boundary of every exported
// Compress/Decompress/Train/Load call. Internal helpers signal failure by
// panicking with an *Error; errRecover turns that back into a normal return
// value so callers never see a panic, and any unrelated runtime panic (a bug,
// not a protocol violation) still propagates.
func errRecover(err *error) {
	switch ex := recover().(type) {
	case nil:
		// Do nothing.
	case runtime.Error:
		panic(ex)
	case *Error:
		*err = ex
	case error:
		*err = errOf(KindCorrupt, ex.Error())
	default:
		panic(ex)
	}
}
