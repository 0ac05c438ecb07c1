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

package behavior

import (
	"reflect"

	gerrors "github.com/tochemey/goakt-typed/errors"
)

// OrElse combines two behaviors. An input is interpreted by first and, only when
// first leaves it unhandled, by second with the same input. Any other result of
// first is returned unchanged.
func OrElse[M any](first, second Behavior[M]) Behavior[M] {
	return Setup(func(ctx Context) (Behavior[M], error) {
		a, err := Canonicalize(first, ctx)
		if err != nil {
			return nil, err
		}
		b, err := Canonicalize(second, ctx)
		if err != nil {
			return nil, err
		}
		return Extend[M](&orElse[M]{first: a, second: b}), nil
	})
}

type orElse[M any] struct {
	first  Behavior[M]
	second Behavior[M]
}

func (o *orElse[M]) Receive(ctx Context, msg M) (Behavior[M], error) {
	result, err := InterpretMessage(o.first, ctx, msg)
	if err != nil || !IsUnhandled(result) {
		return result, err
	}
	return InterpretMessage(o.second, ctx, msg)
}

func (o *orElse[M]) ReceiveSignal(ctx Context, sig Signal) (Behavior[M], error) {
	result, err := interpretSignal(o.first, ctx, sig)
	if err != nil || !IsUnhandled(result) {
		return result, err
	}
	return interpretSignal(o.second, ctx, sig)
}

// Narrow restricts a behavior accepting M to the messages of type N. Values of N
// must be assignable to M, otherwise ErrIncompatibleTypes is returned.
func Narrow[N, M any](b Behavior[M]) (Behavior[N], error) {
	if narrowed, ok := any(b).(Behavior[N]); ok {
		return narrowed, nil
	}

	from, to := reflect.TypeFor[N](), reflect.TypeFor[M]()
	if !from.AssignableTo(to) {
		return nil, gerrors.NewErrIncompatibleTypes(from.String(), to.String())
	}

	return Intercept[N, M](b, narrowInterceptor[N, M]{
		id: conversionIdentity{from: from, to: to},
	}), nil
}

type conversionIdentity struct {
	from reflect.Type
	to   reflect.Type
}

type narrowInterceptor[N, M any] struct {
	PassThrough[M]
	id conversionIdentity
}

func (n narrowInterceptor[N, M]) AroundReceive(ctx Context, msg N, target ReceiveTarget[M]) (Behavior[M], error) {
	converted, ok := any(msg).(M)
	if !ok {
		return Unhandled[M](), nil
	}
	return target.Apply(ctx, converted)
}

func (n narrowInterceptor[N, M]) Identity() any { return n.id }

// Widen exposes a behavior accepting M as a behavior accepting W. Messages that
// convert rejects are unhandled.
func Widen[W, M any](b Behavior[M], convert func(W) (M, bool)) Behavior[W] {
	return Intercept[W, M](b, &widenInterceptor[W, M]{convert: convert})
}

type widenInterceptor[W, M any] struct {
	PassThrough[M]
	convert func(W) (M, bool)
}

func (w *widenInterceptor[W, M]) AroundReceive(ctx Context, msg W, target ReceiveTarget[M]) (Behavior[M], error) {
	converted, ok := w.convert(msg)
	if !ok {
		return Unhandled[M](), nil
	}
	return target.Apply(ctx, converted)
}

// Identity is the interceptor itself, so only the same Widen call deduplicates
func (w *widenInterceptor[W, M]) Identity() any { return w }
