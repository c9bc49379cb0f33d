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

package unit

import "github.com/nabbar/golib/errors"

const (
	ErrorParamsInvalid errors.CodeError = iota + errors.MinAvailable + 200
	ErrorNoListenEndpoint
	ErrorAcceptNotApplicable
	ErrorMaxConnectionsInvalid
	ErrorAcceptWithService
	ErrorPAMRequiresControlGroup
	ErrorAlreadyStarting
	ErrorSpawnFailed
	ErrorAcceptFailed
	ErrorInvalidState
)

var isCodeError = false

func IsCodeError() bool {
	return isCodeError
}

func init() {
	isCodeError = errors.ExistInMapMessage(ErrorParamsInvalid)
	errors.RegisterIdFctMessage(ErrorParamsInvalid, getMessage)
}

func getMessage(code errors.CodeError) (message string) {
	switch code {
	case errors.UNK_ERROR:
		return ""
	case ErrorParamsInvalid:
		return "given unit configuration is invalid"
	case ErrorNoListenEndpoint:
		return "unit has no listen endpoint configured"
	case ErrorAcceptNotApplicable:
		return "accept mode requires only connection-oriented socket endpoints"
	case ErrorMaxConnectionsInvalid:
		return "accept mode requires max-connections > 0"
	case ErrorAcceptWithService:
		return "accept mode cannot be combined with an explicit service reference"
	case ErrorPAMRequiresControlGroup:
		return "pam name requires kill-mode control-group"
	case ErrorAlreadyStarting:
		return "unit is already starting or running"
	case ErrorSpawnFailed:
		return "failed to spawn control child"
	case ErrorAcceptFailed:
		return "failed to accept connection"
	case ErrorInvalidState:
		return "operation not valid in the current state"
	}

	return ""
}
