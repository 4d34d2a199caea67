package rfhttp

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/shmel1k/rftarantool/internal/keyword"
	"github.com/shmel1k/rftarantool/internal/tarantool"
	"github.com/shmel1k/rftarantool/internal/xmlrpc"
)

const maxRequestSize = 16 << 20

var errInvalidParams = errors.New("invalid params")

// Runner executes keywords of a library.
type Runner interface {
	Registry() *keyword.Registry
	Run(ctx context.Context, name string, positional []interface{}, named map[string]interface{}) (interface{}, error)
}

// RemoteHandler serves the Robot Framework remote library interface.
type RemoteHandler struct {
	runner Runner
	doc    string
	logger zerolog.Logger

	// stop is called by stop_remote_server, nil disables it.
	stop func()
}

func NewRemoteHandler(logger zerolog.Logger, runner Runner, doc string, stop func()) *RemoteHandler {
	return &RemoteHandler{
		runner: runner,
		doc:    doc,
		logger: logger,
		stop:   stop,
	}
}

func (h *RemoteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	method, params, err := xmlrpc.DecodeCall(http.MaxBytesReader(w, r.Body, maxRequestSize))
	if err != nil {
		h.writeFault(w, faultMalformedCall, err)
		return
	}

	h.logger.Debug().Str("method", method).Msg("Remote call")

	var res interface{}
	switch method {
	case methodGetLibraryInformation:
		res = h.libraryInformation()
	case methodGetKeywordNames:
		res = h.keywordNames()
	case methodRunKeyword:
		res, err = h.runKeyword(r.Context(), params)
	case methodGetKeywordArguments:
		res, err = h.withKeyword(params, func(kw *keyword.Keyword) interface{} { return toList(kw.ArgSpec()) })
	case methodGetKeywordDocumentation:
		res, err = h.documentation(params)
	case methodGetKeywordTags:
		res, err = h.withKeyword(params, func(kw *keyword.Keyword) interface{} { return toList(kw.Tags) })
	case methodGetKeywordTypes:
		res, err = h.withKeyword(params, func(*keyword.Keyword) interface{} { return []interface{}{} })
	case methodStopRemoteServer:
		res = h.stopServer()
	default:
		h.writeFault(w, faultUnknownMethod, fmt.Errorf("unknown method '%s'", method))
		return
	}

	if err != nil {
		h.writeFault(w, faultInvalidParams, err)
		return
	}

	h.writeResponse(w, res)
}

func (h *RemoteHandler) keywordNames() []interface{} {
	return toList(h.runner.Registry().Names())
}

func (h *RemoteHandler) libraryInformation() map[string]interface{} {
	reg := h.runner.Registry()
	info := map[string]interface{}{
		docIntro: map[string]interface{}{"doc": h.doc},
		docInit:  map[string]interface{}{"doc": ""},
	}
	for _, name := range reg.Names() {
		kw, err := reg.Lookup(name)
		if err != nil {
			continue
		}
		info[name] = map[string]interface{}{
			"args": toList(kw.ArgSpec()),
			"doc":  kw.Doc,
			"tags": toList(kw.Tags),
		}
	}

	return info
}

func (h *RemoteHandler) runKeyword(ctx context.Context, params []interface{}) (interface{}, error) {
	if len(params) < 1 || len(params) > 3 {
		return nil, fmt.Errorf("%w: run_keyword expects name, args and optional kwargs", errInvalidParams)
	}

	name, ok := params[0].(string)
	if !ok {
		return nil, fmt.Errorf("%w: keyword name must be a string", errInvalidParams)
	}

	var positional []interface{}
	if len(params) > 1 {
		positional, ok = params[1].([]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: keyword args must be an array", errInvalidParams)
		}
	}

	var named map[string]interface{}
	if len(params) > 2 {
		named, ok = params[2].(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: keyword kwargs must be a struct", errInvalidParams)
		}
	}

	ret, err := h.runner.Run(ctx, name, positional, named)
	if err != nil {
		h.logger.Info().Err(err).Str("keyword", name).Msg("Keyword failed")
		return newFailResult(tarantool.Kind(err), err).toStruct(), nil
	}

	return newPassResult(ret).toStruct(), nil
}

func (h *RemoteHandler) documentation(params []interface{}) (interface{}, error) {
	name, err := nameParam(params)
	if err != nil {
		return nil, err
	}

	switch name {
	case docIntro:
		return h.doc, nil
	case docInit:
		return "", nil
	}

	kw, err := h.runner.Registry().Lookup(name)
	if err != nil {
		return nil, err
	}

	return kw.Doc, nil
}

func (h *RemoteHandler) withKeyword(params []interface{}, fn func(kw *keyword.Keyword) interface{}) (interface{}, error) {
	name, err := nameParam(params)
	if err != nil {
		return nil, err
	}

	kw, err := h.runner.Registry().Lookup(name)
	if err != nil {
		return nil, err
	}

	return fn(kw), nil
}

func (h *RemoteHandler) stopServer() bool {
	if h.stop == nil {
		h.logger.Warn().Msg("Stopping the remote server is not allowed")
		return false
	}

	h.logger.Info().Msg("Remote server is asked to stop")
	go h.stop()

	return true
}

func (h *RemoteHandler) writeResponse(w http.ResponseWriter, res interface{}) {
	var buf bytes.Buffer
	if err := xmlrpc.EncodeResponse(&buf, res); err != nil {
		h.logger.Err(err).Msg("failed to encode response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	h.write(w, buf.Bytes())
}

func (h *RemoteHandler) writeFault(w http.ResponseWriter, code int, err error) {
	h.logger.Err(err).Int("code", code).Msg("xml-rpc fault")

	var buf bytes.Buffer
	_ = xmlrpc.EncodeFault(&buf, code, err.Error())

	h.write(w, buf.Bytes())
}

func (h *RemoteHandler) write(w http.ResponseWriter, data []byte) {
	w.Header().Set("Content-Type", "text/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)

	_, err := w.Write(data)
	if err != nil {
		h.logger.Err(err).Msg("failed to write response")
	}
}

func nameParam(params []interface{}) (string, error) {
	if len(params) != 1 {
		return "", fmt.Errorf("%w: expected keyword name", errInvalidParams)
	}

	name, ok := params[0].(string)
	if !ok {
		return "", fmt.Errorf("%w: keyword name must be a string", errInvalidParams)
	}

	return name, nil
}

func toList(items []string) []interface{} {
	res := make([]interface{}, 0, len(items))
	for _, s := range items {
		res = append(res, s)
	}

	return res
}
