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

package endpoint

import "github.com/nabbar/golib/errors"

const (
	ErrorParamsInvalid errors.CodeError = iota + errors.MinAvailable + 100
	ErrorAddressInUse
	ErrorAlreadyExists
	ErrorBind
	ErrorListen
	ErrorMkdir
	ErrorMkfifo
	ErrorOpen
	ErrorStat
	ErrorWrongType
	ErrorMessageQueue
	ErrorNotSupported
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
		return "given endpoint parameters are invalid"
	case ErrorAddressInUse:
		return "cannot remove stale socket at endpoint address"
	case ErrorAlreadyExists:
		return "path exists and is not the expected object kind"
	case ErrorBind:
		return "cannot bind endpoint address"
	case ErrorListen:
		return "cannot listen on endpoint"
	case ErrorMkdir:
		return "cannot create parent directories"
	case ErrorMkfifo:
		return "cannot create fifo"
	case ErrorOpen:
		return "cannot open endpoint"
	case ErrorStat:
		return "cannot stat opened endpoint"
	case ErrorWrongType:
		return "opened object is not of the expected kind"
	case ErrorMessageQueue:
		return "cannot create message queue"
	case ErrorNotSupported:
		return "operation not supported on this platform"
	}

	return ""
}
