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

// Signal is a lifecycle or system notification delivered like a message but
// outside of the actor protocol. User-defined signals implement it as well.
type Signal interface {
	SignalName() string
}

// PreStart is delivered once the actor has been started
type PreStart struct{}

// PostStop is delivered once when the actor stops
type PostStop struct{}

// PreRestart is delivered to the failing behavior before a supervisor restarts it
type PreRestart struct{}

// Terminated is delivered to an actor watching Ref once Ref stops.
// Cause is set when Ref stopped because of a failure.
type Terminated struct {
	Ref   ActorRef
	Cause error
}

func (PreStart) SignalName() string   { return "PreStart" }
func (PostStop) SignalName() string   { return "PostStop" }
func (PreRestart) SignalName() string { return "PreRestart" }
func (Terminated) SignalName() string { return "Terminated" }

var (
	_ Signal = PreStart{}
	_ Signal = PostStop{}
	_ Signal = PreRestart{}
	_ Signal = Terminated{}
)
