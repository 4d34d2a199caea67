package xmlrpc

import (
	"encoding/base64"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

const iso8601 = "20060102T15:04:05"

var (
	ErrMalformedCall     = errors.New("malformed xml-rpc method call")
	ErrMalformedResponse = errors.New("malformed xml-rpc method response")
)

// Fault is an XML-RPC fault response.
type Fault struct {
	Code   int
	String string
}

func (f *Fault) Error() string {
	return fmt.Sprintf("xml-rpc fault %d: %s", f.Code, f.String)
}

type methodCall struct {
	XMLName    xml.Name   `xml:"methodCall"`
	MethodName string     `xml:"methodName"`
	Params     []xmlValue `xml:"params>param>value"`
}

type methodResponse struct {
	XMLName xml.Name   `xml:"methodResponse"`
	Params  []xmlValue `xml:"params>param>value"`
	Fault   *xmlValue  `xml:"fault>value"`
}

type xmlValue struct {
	Text     string     `xml:",chardata"`
	String   *string    `xml:"string"`
	Int      *string    `xml:"int"`
	I4       *string    `xml:"i4"`
	I8       *string    `xml:"i8"`
	Boolean  *string    `xml:"boolean"`
	Double   *string    `xml:"double"`
	DateTime *string    `xml:"dateTime.iso8601"`
	Base64   *string    `xml:"base64"`
	Struct   *xmlStruct `xml:"struct"`
	Array    *xmlArray  `xml:"array"`
	Nil      *struct{}  `xml:"nil"`
}

type xmlStruct struct {
	Members []xmlMember `xml:"member"`
}

type xmlMember struct {
	Name  string   `xml:"name"`
	Value xmlValue `xml:"value"`
}

type xmlArray struct {
	Values []xmlValue `xml:"data>value"`
}

// DecodeCall reads a method call. Params are decoded into
// string, int64, bool, float64, []byte, time.Time, nil,
// []interface{} and map[string]interface{}.
func DecodeCall(r io.Reader) (string, []interface{}, error) {
	var call methodCall
	if err := xml.NewDecoder(r).Decode(&call); err != nil {
		return "", nil, fmt.Errorf("%w: %v", ErrMalformedCall, err)
	}

	method := strings.TrimSpace(call.MethodName)
	if method == "" {
		return "", nil, fmt.Errorf("%w: empty method name", ErrMalformedCall)
	}

	params := make([]interface{}, 0, len(call.Params))
	for i := range call.Params {
		v, err := call.Params[i].decode()
		if err != nil {
			return "", nil, fmt.Errorf("%w: param %d: %v", ErrMalformedCall, i, err)
		}
		params = append(params, v)
	}

	return method, params, nil
}

// DecodeResponse reads a method response. A fault is returned as *Fault error.
func DecodeResponse(r io.Reader) (interface{}, error) {
	var resp methodResponse
	if err := xml.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.Fault != nil {
		v, err := resp.Fault.decode()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return nil, faultOf(v)
	}

	if len(resp.Params) != 1 {
		return nil, fmt.Errorf("%w: expected one param, got %d", ErrMalformedResponse, len(resp.Params))
	}

	v, err := resp.Params[0].decode()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	return v, nil
}

func faultOf(v interface{}) *Fault {
	f := &Fault{}
	m, ok := v.(map[string]interface{})
	if !ok {
		f.String = fmt.Sprint(v)
		return f
	}

	if code, ok := m["faultCode"].(int64); ok {
		f.Code = int(code)
	}
	if s, ok := m["faultString"].(string); ok {
		f.String = s
	}

	return f
}

func (v *xmlValue) decode() (interface{}, error) {
	switch {
	case v.String != nil:
		return *v.String, nil
	case v.Int != nil:
		return parseInt(*v.Int)
	case v.I4 != nil:
		return parseInt(*v.I4)
	case v.I8 != nil:
		return parseInt(*v.I8)
	case v.Boolean != nil:
		return parseBool(*v.Boolean)
	case v.Double != nil:
		return strconv.ParseFloat(strings.TrimSpace(*v.Double), 64)
	case v.DateTime != nil:
		return time.Parse(iso8601, strings.TrimSpace(*v.DateTime))
	case v.Base64 != nil:
		return base64.StdEncoding.DecodeString(strings.Join(strings.Fields(*v.Base64), ""))
	case v.Struct != nil:
		return v.Struct.decode()
	case v.Array != nil:
		return v.Array.decode()
	case v.Nil != nil:
		return nil, nil
	}

	// A value without a type element is a string.
	return v.Text, nil
}

func (s *xmlStruct) decode() (map[string]interface{}, error) {
	res := make(map[string]interface{}, len(s.Members))
	for i := range s.Members {
		m := &s.Members[i]
		v, err := m.Value.decode()
		if err != nil {
			return nil, fmt.Errorf("member '%s': %v", m.Name, err)
		}
		res[m.Name] = v
	}

	return res, nil
}

func (a *xmlArray) decode() ([]interface{}, error) {
	res := make([]interface{}, 0, len(a.Values))
	for i := range a.Values {
		v, err := a.Values[i].decode()
		if err != nil {
			return nil, fmt.Errorf("item %d: %v", i, err)
		}
		res = append(res, v)
	}

	return res, nil
}

func parseInt(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

func parseBool(s string) (bool, error) {
	switch strings.TrimSpace(s) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}

	return false, fmt.Errorf("invalid boolean value '%s'", s)
}
