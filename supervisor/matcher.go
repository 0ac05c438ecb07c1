// MIT License
//
// Copyright (c) 2022-2026 GoAkt Team
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package supervisor

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	gerrors "github.com/tochemey/goakt-typed/errors"
)

// Matcher selects the failures a supervisor handles. Failures that do not
// match propagate to the outer behavior unchanged.
type Matcher struct {
	name  string
	match func(err error) bool
}

// AnyError matches every failure
func AnyError() Matcher {
	return Matcher{
		name:  new(gerrors.AnyError).Error(),
		match: func(error) bool { return true },
	}
}

// ErrorOfType matches failures whose chain holds an error of the same
// dynamic type as target
func ErrorOfType(target error) Matcher {
	targetType := reflect.TypeOf(target)
	return Matcher{
		name: errorType(target),
		match: func(err error) bool {
			if targetType == nil {
				return false
			}
			holder := reflect.New(targetType)
			return errors.As(err, holder.Interface())
		},
	}
}

// ErrorIs matches failures for which errors.Is(err, target) holds
func ErrorIs(target error) Matcher {
	return Matcher{
		name: fmt.Sprintf("is(%s)", target),
		match: func(err error) bool {
			return errors.Is(err, target)
		},
	}
}

// MatchFunc builds a matcher from a predicate. Supervisors with the same
// strategy and matcher name replace each other, so name must identify fn.
func MatchFunc(name string, fn func(err error) bool) Matcher {
	return Matcher{name: name, match: fn}
}

// Name returns the matcher name
func (m Matcher) Name() string {
	return m.name
}

// Matches reports whether err is handled
func (m Matcher) Matches(err error) bool {
	return err != nil && m.match != nil && m.match(err)
}

// anyOf matches when one of the matchers does
func anyOf(matchers ...Matcher) Matcher {
	switch len(matchers) {
	case 0:
		return AnyError()
	case 1:
		return matchers[0]
	}

	names := make([]string, len(matchers))
	for i, matcher := range matchers {
		names[i] = matcher.name
	}

	return Matcher{
		name: strings.Join(names, "|"),
		match: func(err error) bool {
			for _, matcher := range matchers {
				if matcher.Matches(err) {
					return true
				}
			}
			return false
		},
	}
}

// errorType returns the string representation of an error's type using a reflection
func errorType(err error) string {
	if err == nil {
		return "nil"
	}

	rtype := reflect.TypeOf(err)
	if rtype.Kind() == reflect.Ptr {
		rtype = rtype.Elem()
	}

	return rtype.String()
}
