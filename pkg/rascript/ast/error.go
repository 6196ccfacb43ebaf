// RAScript
// Copyright (c) 2025 The Zaparoo Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of RAScript.
//
// RAScript is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// RAScript is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with RAScript.  If not, see <http://www.gnu.org/licenses/>.

package ast

import (
	"fmt"
)

// ErrorExpression is a failure located in the source. It is both a node,
// so parsing and evaluation can return it in place of a value, and an
// error. Inner links to the failure that caused it when an error is
// reported again from a calling context.
type ErrorExpression struct {
	Node
	Message string
	Inner   *ErrorExpression
	// Err is the sentinel the failure was built from, if any.
	Err error
}

// NewError returns an error located at r.
func NewError(message string, r TextRange) *ErrorExpression {
	n := &ErrorExpression{Message: message}
	n.rng = r
	return n
}

// Errorf returns an error located at r with a formatted message.
func Errorf(r TextRange, format string, args ...any) *ErrorExpression {
	return NewError(fmt.Sprintf(format, args...), r)
}

// ErrorFrom returns an error located at r for err. The message is err's
// text and errors.Is matches err.
func ErrorFrom(err error, r TextRange) *ErrorExpression {
	n := NewError(err.Error(), r)
	n.Err = err
	return n
}

// Wrap returns a new error located at r whose inner error is inner.
func Wrap(inner *ErrorExpression, message string, r TextRange) *ErrorExpression {
	n := NewError(message, r)
	n.Inner = inner
	return n
}

func (e *ErrorExpression) Error() string {
	return e.Message
}

func (e *ErrorExpression) String() string {
	return e.Message
}

// Unwrap exposes the inner error and the sentinel to errors.Is and
// errors.As.
func (e *ErrorExpression) Unwrap() []error {
	var out []error
	if e.Inner != nil {
		out = append(out, e.Inner)
	}
	if e.Err != nil {
		out = append(out, e.Err)
	}
	return out
}

// Innermost follows the chain of inner errors to the original failure.
func (e *ErrorExpression) Innermost() *ErrorExpression {
	for e.Inner != nil {
		e = e.Inner
	}
	return e
}

// ErrorFromf returns an error located at r with a formatted message that
// errors.Is matches against err.
func ErrorFromf(err error, r TextRange, format string, args ...any) *ErrorExpression {
	n := Errorf(r, format, args...)
	n.Err = err
	return n
}
