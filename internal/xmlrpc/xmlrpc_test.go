package xmlrpc

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeCall(t *testing.T) {
	body := `<?xml version="1.0"?>
<methodCall>
  <methodName>run_keyword</methodName>
  <params>
    <param><value><string>Select</string></value></param>
    <param><value><array><data>
      <value>some_space_name</value>
      <value><int>0</int></value>
      <value><i4>-5</i4></value>
      <value><i8>1099511627776</i8></value>
      <value><boolean>1</boolean></value>
      <value><double>1.5</double></value>
      <value><base64>YWJj</base64></value>
      <value><dateTime.iso8601>20201019T10:11:12</dateTime.iso8601></value>
      <value><nil/></value>
      <value><string></string></value>
    </data></array></value></param>
    <param><value><struct>
      <member><name>key_type</name><value><string>NUM</string></value></member>
    </struct></value></param>
  </params>
</methodCall>`

	method, params, err := DecodeCall(strings.NewReader(body))
	require.NoError(t, err)
	assert.Equal(t, "run_keyword", method)
	require.Len(t, params, 3)

	assert.Equal(t, "Select", params[0])
	assert.Equal(t, []interface{}{
		"some_space_name",
		int64(0),
		int64(-5),
		int64(1099511627776),
		true,
		1.5,
		[]byte("abc"),
		time.Date(2020, 10, 19, 10, 11, 12, 0, time.UTC),
		nil,
		"",
	}, params[1])
	assert.Equal(t, map[string]interface{}{"key_type": "NUM"}, params[2])
}

func TestDecodeCall_Malformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "NotXML", body: "hello"},
		{name: "NoMethod", body: "<methodCall><params/></methodCall>"},
		{name: "BadInt", body: "<methodCall><methodName>m</methodName><params><param><value><int>x</int></value></param></params></methodCall>"},
		{name: "BadBoolean", body: "<methodCall><methodName>m</methodName><params><param><value><boolean>2</boolean></value></param></params></methodCall>"},
	}
	for _, tv := range tests {
		tt := tv
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeCall(strings.NewReader(tt.body))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedCall))
		})
	}
}

type rows [][]interface{}

func TestEncodeResponse_RoundTrip(t *testing.T) {
	value := map[string]interface{}{
		"status": "PASS",
		"return": rows{{int64(0), "field_value"}, {uint64(1) << 40, nil}},
		"flag":   false,
		"ratio":  0.25,
		"bytes":  []byte{0x00, 0x01},
		"escape": "a<b&c",
		"binary": "nul\x00char",
		"huge":   uint64(1) << 63,
	}

	var buf bytes.Buffer
	require.NoError(t, EncodeResponse(&buf, value))

	got, err := DecodeResponse(&buf)
	require.NoError(t, err)

	assert.Equal(t, map[string]interface{}{
		"status": "PASS",
		"return": []interface{}{
			[]interface{}{int64(0), "field_value"},
			[]interface{}{int64(1) << 40, ""},
		},
		"flag":   false,
		"ratio":  0.25,
		"bytes":  []byte{0x00, 0x01},
		"escape": "a<b&c",
		"binary": []byte("nul\x00char"),
		"huge":   "9223372036854775808",
	}, got)
}

func TestEncodeResponse_IntWidth(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeResponse(&buf, []interface{}{int64(1), int64(1) << 40}))

	assert.Contains(t, buf.String(), "<int>1</int>")
	assert.Contains(t, buf.String(), "<i8>1099511627776</i8>")
}

func TestEncodeFault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeFault(&buf, 2, "no such method"))

	_, err := DecodeResponse(&buf)
	require.Error(t, err)

	var fault *Fault
	require.True(t, errors.As(err, &fault))
	assert.Equal(t, 2, fault.Code)
	assert.Equal(t, "no such method", fault.String)
}

func TestEncodeCall_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, EncodeCall(&buf, "run_keyword", "Select", []interface{}{"space", 0}, map[string]interface{}{"key_type": "NUM"}))

	method, params, err := DecodeCall(&buf)
	require.NoError(t, err)
	assert.Equal(t, "run_keyword", method)
	assert.Equal(t, []interface{}{
		"Select",
		[]interface{}{"space", int64(0)},
		map[string]interface{}{"key_type": "NUM"},
	}, params)
}
