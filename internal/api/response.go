// Package api holds the JSON envelope every lincms endpoint speaks and the
// helpers handlers use to read input and map errors onto it.
//
// Envelope
//
//	{"code": 10030, "msg": {"phone": "手机号已被注册"}, "request": "POST /cms/member/"}
//
// Successful writes use code 0 with a human message; reads return the
// resource itself.
package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"
)

// Error codes.
const (
	CodeOK           = 0
	CodeUnknown      = 9999
	CodeUnauthorized = 10000
	CodeForbidden    = 10001
	CodeNotFound     = 10020
	CodeParameter    = 10030
	CodeRepeat       = 10060
)

// Envelope is the error/acknowledgement body.
type Envelope struct {
	Code    int    `json:"code"`
	Msg     any    `json:"msg"`
	Request string `json:"request"`
}

// JSON writes v with status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("encode response", zap.Error(err))
	}
}

// Success acknowledges a write.
func Success(w http.ResponseWriter, r *http.Request, msg string) {
	JSON(w, http.StatusCreated, Envelope{Code: CodeOK, Msg: msg, Request: requestLine(r)})
}

// Fail writes an error envelope.
func Fail(w http.ResponseWriter, r *http.Request, status, code int, msg any) {
	JSON(w, status, Envelope{Code: code, Msg: msg, Request: requestLine(r)})
}

// NotFound is Fail with 404.
func NotFound(w http.ResponseWriter, r *http.Request, msg string) {
	Fail(w, r, http.StatusNotFound, CodeNotFound, msg)
}

// Parameter is Fail with 400 and the parameter code.
func Parameter(w http.ResponseWriter, r *http.Request, msg any) {
	Fail(w, r, http.StatusBadRequest, CodeParameter, msg)
}

// fieldMessages is satisfied by form.ValidationError and BadRequest.
type fieldMessages interface {
	error
	Messages() map[string]string
}

// BadRequest reports input that could not even be decoded.
type BadRequest struct{ Field, Message string }

func (e *BadRequest) Error() string { return e.Field + ": " + e.Message }

// Messages implements fieldMessages.
func (e *BadRequest) Messages() map[string]string {
	return map[string]string{e.Field: e.Message}
}

// Error maps err onto the envelope.  Validation failures become 400 with a
// field→message map; anything else is logged and hidden behind a 500.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	var fm fieldMessages
	if errors.As(err, &fm) {
		Parameter(w, r, fm.Messages())
		return
	}
	zap.L().Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err))
	Fail(w, r, http.StatusInternalServerError, CodeUnknown, "服务器未知错误")
}

func requestLine(r *http.Request) string { return r.Method + " " + r.URL.Path }
