package rfhttp

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/shmel1k/rftarantool/internal/config"
	"github.com/shmel1k/rftarantool/internal/library"
	"github.com/shmel1k/rftarantool/internal/tarantool"
	"github.com/shmel1k/rftarantool/internal/xmlrpc"
)

var (
	dummyLogger = zerolog.New(nil)
	tSpaceName  = "some_space_name"
)

type remoteSuite struct {
	suite.Suite

	conn    *tarantool.MockConn
	lib     *library.Library
	stopped int32

	router *mux.Router
}

func TestRemote(t *testing.T) {
	suite.Run(t, &remoteSuite{
		Suite: suite.Suite{},
	})
}

func (s *remoteSuite) BeforeTest(_, _ string) {
	cfg, err := config.Setup("")
	require.NoError(s.T(), err)

	s.conn = &tarantool.MockConn{
		Rows: tarantool.RowSet{{int64(0), "field_value"}},
	}
	s.lib = library.New(&tarantool.MockDialer{Conn: s.conn}, cfg.Connection)
	atomic.StoreInt32(&s.stopped, 0)

	stop := func() { atomic.StoreInt32(&s.stopped, 1) }

	router := mux.NewRouter()
	RegisterRemoteHandlers(router, NewRemoteHandler(dummyLogger, s.lib, library.Doc, stop))
	RegisterDebugHandlers(router, "1.0.0", "abc", "today")

	s.router = router
}

func (s *remoteSuite) AfterTest(_, _ string) {
	s.lib.Shutdown()
}

func (s *remoteSuite) call(path, method string, params ...interface{}) (interface{}, error) {
	t := s.T()

	var body bytes.Buffer
	require.NoError(t, xmlrpc.EncodeCall(&body, method, params...))

	r := httptest.NewRequest(http.MethodPost, path, &body)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/xml")

	return xmlrpc.DecodeResponse(w.Body)
}

func (s *remoteSuite) runKeyword(name string, args ...interface{}) map[string]interface{} {
	if args == nil {
		args = []interface{}{}
	}

	res, err := s.call("/", methodRunKeyword, name, args)
	require.NoError(s.T(), err)

	m, ok := res.(map[string]interface{})
	require.True(s.T(), ok, "unexpected result %#v", res)

	return m
}

func (s *remoteSuite) TestKeywordNames() {
	t := s.T()

	res, err := s.call("/RPC2", methodGetKeywordNames)
	require.NoError(t, err)

	names, ok := res.([]interface{})
	require.True(t, ok)
	assert.Contains(t, names, "Select")
	assert.Contains(t, names, "Connect To Tarantool")
	assert.Contains(t, names, "Close All Tarantool Connections")
}

func (s *remoteSuite) TestLibraryInformation() {
	t := s.T()

	res, err := s.call("/", methodGetLibraryInformation)
	require.NoError(t, err)

	info, ok := res.(map[string]interface{})
	require.True(t, ok)

	intro, ok := info[docIntro].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, library.Doc, intro["doc"])

	sel, ok := info["Select"].(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, sel["args"], "space_name")
	assert.Contains(t, sel["args"], "**kwargs")
}

func (s *remoteSuite) TestKeywordMetadata() {
	t := s.T()
	for _, tv := range []struct {
		name   string
		method string
		param  string
		check  func(t *testing.T, res interface{})
	}{
		{
			name:   "Arguments",
			method: methodGetKeywordArguments,
			param:  "select",
			check: func(t *testing.T, res interface{}) {
				assert.Equal(t, []interface{}{
					"space_name", "key", "offset=0", "limit=4294967295", "index=0", "key_type=", "**kwargs",
				}, res)
			},
		},
		{
			name:   "Documentation",
			method: methodGetKeywordDocumentation,
			param:  "Select",
			check: func(t *testing.T, res interface{}) {
				doc, ok := res.(string)
				require.True(t, ok)
				assert.NotEmpty(t, doc)
			},
		},
		{
			name:   "Intro_documentation",
			method: methodGetKeywordDocumentation,
			param:  docIntro,
			check: func(t *testing.T, res interface{}) {
				assert.Equal(t, library.Doc, res)
			},
		},
		{
			name:   "Types",
			method: methodGetKeywordTypes,
			param:  "Select",
			check: func(t *testing.T, res interface{}) {
				assert.Equal(t, []interface{}{}, res)
			},
		},
	} {
		tt := tv
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.call("/", tt.method, tt.param)
			require.NoError(t, err)
			tt.check(t, res)
		})
	}
}

func (s *remoteSuite) TestUnknownKeywordMetadata() {
	_, err := s.call("/", methodGetKeywordArguments, "no such keyword")

	var fault *xmlrpc.Fault
	require.True(s.T(), errors.As(err, &fault))
	assert.Equal(s.T(), faultInvalidParams, fault.Code)
}

func (s *remoteSuite) TestRunKeyword_Select() {
	t := s.T()

	res := s.runKeyword("Connect To Tarantool", "127.0.0.1", "3301")
	require.Equal(t, statusPass, res["status"], res["error"])
	assert.Equal(t, int64(1), res["return"])

	res = s.runKeyword("Select", tSpaceName, "0", "0", "1", "0", "NUM")
	require.Equal(t, statusPass, res["status"], res["error"])
	assert.Equal(t, []interface{}{
		[]interface{}{int64(0), "field_value"},
	}, res["return"])

	reqs := s.conn.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, tarantool.SelectRequest{
		Space:    tSpaceName,
		Index:    "0",
		Key:      uint32(0),
		Offset:   0,
		Limit:    1,
		Iterator: tarantool.IterEq,
	}, reqs[0])
}

func (s *remoteSuite) TestRunKeyword_Kwargs() {
	t := s.T()

	s.runKeyword("Connect To Tarantool", "127.0.0.1", "3301")

	res, err := s.call("/", methodRunKeyword, "Select", []interface{}{tSpaceName, "1"},
		map[string]interface{}{"key_type": "NUM", "iterator": "GE"})
	require.NoError(t, err)

	m := res.(map[string]interface{})
	require.Equal(t, statusPass, m["status"], m["error"])

	reqs := s.conn.Requests()
	require.Len(t, reqs, 1)
	req := reqs[0].(tarantool.SelectRequest)
	assert.Equal(t, tarantool.IterGe, req.Iterator)
	assert.Equal(t, uint32(1), req.Key)
}

func (s *remoteSuite) TestRunKeyword_Failures() {
	t := s.T()
	for _, tv := range []struct {
		name    string
		connect bool
		connErr error
		args    []interface{}
		prefix  string
	}{
		{
			name:   "No_connection",
			args:   []interface{}{tSpaceName, "0", "0", "1", "0", "NUM"},
			prefix: "ConnectionError: ",
		},
		{
			name:    "Invalid_key_type",
			connect: true,
			args:    []interface{}{tSpaceName, "0", "0", "1", "0", "BOGUS"},
			prefix:  "InvalidKeyType: ",
		},
		{
			name:    "Query_error",
			connect: true,
			connErr: &tarantool.QueryError{Err: errors.New("Space 'some_space_name' does not exist")},
			args:    []interface{}{tSpaceName, "0"},
			prefix:  "QueryError: Space 'some_space_name' does not exist",
		},
	} {
		tt := tv
		t.Run(tt.name, func(t *testing.T) {
			s.lib.Shutdown()
			s.conn.Err = tt.connErr

			if tt.connect {
				res := s.runKeyword("Connect To Tarantool", "127.0.0.1", "3301")
				require.Equal(t, statusPass, res["status"], res["error"])
			}

			res := s.runKeyword("Select", tt.args...)
			assert.Equal(t, statusFail, res["status"])
			assert.True(t, strings.HasPrefix(res["error"].(string), tt.prefix), res["error"])
			assert.Equal(t, false, res["fatal"])
			assert.Equal(t, false, res["continuable"])
			assert.NotContains(t, res, "return")
		})
	}
}

func (s *remoteSuite) TestRunKeyword_BadParams() {
	t := s.T()
	for _, tv := range []struct {
		name   string
		params []interface{}
	}{
		{name: "No_params", params: nil},
		{name: "Name_not_string", params: []interface{}{int64(1), []interface{}{}}},
		{name: "Args_not_array", params: []interface{}{"Select", "x"}},
		{name: "Kwargs_not_struct", params: []interface{}{"Select", []interface{}{}, "x"}},
	} {
		tt := tv
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.call("/", methodRunKeyword, tt.params...)

			var fault *xmlrpc.Fault
			require.True(t, errors.As(err, &fault), err)
			assert.Equal(t, faultInvalidParams, fault.Code)
		})
	}
}

func (s *remoteSuite) TestUnknownMethod() {
	_, err := s.call("/", "system.listMethods")

	var fault *xmlrpc.Fault
	require.True(s.T(), errors.As(err, &fault))
	assert.Equal(s.T(), faultUnknownMethod, fault.Code)
}

func (s *remoteSuite) TestMalformedCall() {
	t := s.T()

	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("<methodCall>"))
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	_, err := xmlrpc.DecodeResponse(w.Body)

	var fault *xmlrpc.Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, faultMalformedCall, fault.Code)
}

func (s *remoteSuite) TestStopRemoteServer() {
	t := s.T()

	res, err := s.call("/", methodStopRemoteServer)
	require.NoError(t, err)
	assert.Equal(t, true, res)
	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&s.stopped) == 1
	}, time.Second, 10*time.Millisecond)
}

func (s *remoteSuite) TestStopRemoteServer_Disabled() {
	t := s.T()

	router := mux.NewRouter()
	RegisterRemoteHandlers(router, NewRemoteHandler(dummyLogger, s.lib, library.Doc, nil))

	var body bytes.Buffer
	require.NoError(t, xmlrpc.EncodeCall(&body, methodStopRemoteServer))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/RPC2", &body))

	res, err := xmlrpc.DecodeResponse(w.Body)
	require.NoError(t, err)
	assert.Equal(t, false, res)
}

func (s *remoteSuite) TestDebugHandlers() {
	t := s.T()
	for _, tv := range []struct {
		name string
		path string
		body string
	}{
		{name: "Health", path: "/debug/health"},
		{name: "About", path: "/debug/about", body: `{"version":"1.0.0","commit":"abc","build":"today"}`},
		{name: "Metrics", path: "/debug/metrics"},
	} {
		tt := tv
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, http.StatusOK, w.Code)
			if tt.body != "" {
				assert.JSONEq(t, tt.body, w.Body.String())
			}
		})
	}
}

func (s *remoteSuite) TestRemoteRejectsGet() {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/RPC2", nil))

	assert.Equal(s.T(), http.StatusMethodNotAllowed, w.Code)
}

func TestNewFailResult(t *testing.T) {
	res := newFailResult("Error", errors.New("boom")).toStruct()
	assert.Equal(t, "boom", res["error"])
	assert.Equal(t, statusFail, res["status"])

	data, err := json.Marshal(newPassResult(nil).toStruct())
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"PASS","output":"","return":null}`, string(data))
}
