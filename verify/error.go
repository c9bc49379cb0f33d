/*
 * MIT License
 *
 * Copyright (c) 2026 sockunit authors
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 *
 *
 */

package verify

import "github.com/nabbar/golib/errors"

const (
	ErrorNoListenEndpoint errors.CodeError = iota + errors.MinAvailable + 400
	ErrorAcceptNonAccepting
	ErrorMaxConnectionsInvalid
	ErrorAcceptWithService
	ErrorPAMRequiresControlGroup
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorNoListenEndpoint)
	errors.RegisterIdFctMessage(ErrorNoListenEndpoint, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorNoListenEndpoint:
		return "unit has no listen endpoint configured"
	case ErrorAcceptNonAccepting:
		return "accept mode requires every endpoint to be connection-oriented"
	case ErrorMaxConnectionsInvalid:
		return "accept mode requires max-connections > 0"
	case ErrorAcceptWithService:
		return "accept mode cannot be combined with an explicit service reference"
	case ErrorPAMRequiresControlGroup:
		return "pam name requires kill-mode control-group"
	}

	return ""
}
