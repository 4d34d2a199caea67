package xmlrpc

import (
	"bytes"
	"encoding/base64"
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"reflect"
	"sort"
	"strconv"
	"time"
	"unicode/utf8"
)

const header = `<?xml version="1.0" encoding="UTF-8"?>` + "\n"

// EncodeResponse writes a successful method response with a single value.
func EncodeResponse(w io.Writer, v interface{}) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<methodResponse><params><param>")
	encodeValue(&buf, v)
	buf.WriteString("</param></params></methodResponse>")

	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeFault writes a fault method response.
func EncodeFault(w io.Writer, code int, msg string) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<methodResponse><fault>")
	encodeValue(&buf, map[string]interface{}{
		"faultCode":   code,
		"faultString": msg,
	})
	buf.WriteString("</fault></methodResponse>")

	_, err := w.Write(buf.Bytes())
	return err
}

// EncodeCall writes a method call.
func EncodeCall(w io.Writer, method string, params ...interface{}) error {
	var buf bytes.Buffer
	buf.WriteString(header)
	buf.WriteString("<methodCall><methodName>")
	_ = xml.EscapeText(&buf, []byte(method))
	buf.WriteString("</methodName><params>")
	for _, p := range params {
		buf.WriteString("<param>")
		encodeValue(&buf, p)
		buf.WriteString("</param>")
	}
	buf.WriteString("</params></methodCall>")

	_, err := w.Write(buf.Bytes())
	return err
}

// encodeValue follows the conventions of Robot Framework remote servers:
// nil becomes an empty string, strings which can not be
// represented in XML are sent as base64.
func encodeValue(buf *bytes.Buffer, v interface{}) {
	buf.WriteString("<value>")
	encodeInner(buf, v)
	buf.WriteString("</value>")
}

func encodeInner(buf *bytes.Buffer, v interface{}) {
	switch t := v.(type) {
	case nil:
		buf.WriteString("<string></string>")
	case string:
		encodeString(buf, t)
	case []byte:
		encodeBase64(buf, t)
	case bool:
		if t {
			buf.WriteString("<boolean>1</boolean>")
		} else {
			buf.WriteString("<boolean>0</boolean>")
		}
	case int:
		encodeInt(buf, int64(t))
	case int64:
		encodeInt(buf, t)
	case uint32:
		encodeUint(buf, uint64(t))
	case uint64:
		encodeUint(buf, t)
	case float64:
		encodeFloat(buf, t)
	case time.Time:
		buf.WriteString("<dateTime.iso8601>")
		buf.WriteString(t.Format(iso8601))
		buf.WriteString("</dateTime.iso8601>")
	case error:
		encodeString(buf, t.Error())
	case []interface{}:
		encodeArray(buf, len(t), func(i int) interface{} { return t[i] })
	case map[string]interface{}:
		encodeStruct(buf, t)
	default:
		encodeReflect(buf, reflect.ValueOf(v))
	}
}

// encodeReflect handles named and less common types.
func encodeReflect(buf *bytes.Buffer, rv reflect.Value) {
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface:
		if rv.IsNil() {
			buf.WriteString("<string></string>")
			return
		}
		encodeInner(buf, rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		if rv.Kind() == reflect.Slice && rv.Type().Elem().Kind() == reflect.Uint8 {
			encodeBase64(buf, rv.Bytes())
			return
		}
		encodeArray(buf, rv.Len(), func(i int) interface{} { return rv.Index(i).Interface() })
	case reflect.Map:
		m := make(map[string]interface{}, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			m[fmt.Sprint(iter.Key().Interface())] = iter.Value().Interface()
		}
		encodeStruct(buf, m)
	case reflect.String:
		encodeString(buf, rv.String())
	case reflect.Bool:
		encodeInner(buf, rv.Bool())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		encodeInt(buf, rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		encodeUint(buf, rv.Uint())
	case reflect.Float32, reflect.Float64:
		encodeFloat(buf, rv.Float())
	default:
		encodeString(buf, fmt.Sprint(rv.Interface()))
	}
}

func encodeString(buf *bytes.Buffer, s string) {
	if !isXMLSafe(s) {
		encodeBase64(buf, []byte(s))
		return
	}

	buf.WriteString("<string>")
	_ = xml.EscapeText(buf, []byte(s))
	buf.WriteString("</string>")
}

func encodeBase64(buf *bytes.Buffer, b []byte) {
	buf.WriteString("<base64>")
	buf.WriteString(base64.StdEncoding.EncodeToString(b))
	buf.WriteString("</base64>")
}

func encodeInt(buf *bytes.Buffer, v int64) {
	if v >= math.MinInt32 && v <= math.MaxInt32 {
		buf.WriteString("<int>")
		buf.WriteString(strconv.FormatInt(v, 10))
		buf.WriteString("</int>")
		return
	}

	buf.WriteString("<i8>")
	buf.WriteString(strconv.FormatInt(v, 10))
	buf.WriteString("</i8>")
}

func encodeUint(buf *bytes.Buffer, v uint64) {
	if v > math.MaxInt64 {
		encodeString(buf, strconv.FormatUint(v, 10))
		return
	}

	encodeInt(buf, int64(v))
}

func encodeFloat(buf *bytes.Buffer, f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		encodeString(buf, strconv.FormatFloat(f, 'g', -1, 64))
		return
	}

	buf.WriteString("<double>")
	buf.WriteString(strconv.FormatFloat(f, 'f', -1, 64))
	buf.WriteString("</double>")
}

func encodeArray(buf *bytes.Buffer, n int, item func(int) interface{}) {
	buf.WriteString("<array><data>")
	for i := 0; i < n; i++ {
		encodeValue(buf, item(i))
	}
	buf.WriteString("</data></array>")
}

func encodeStruct(buf *bytes.Buffer, m map[string]interface{}) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	buf.WriteString("<struct>")
	for _, k := range keys {
		buf.WriteString("<member><name>")
		_ = xml.EscapeText(buf, []byte(k))
		buf.WriteString("</name>")
		encodeValue(buf, m[k])
		buf.WriteString("</member>")
	}
	buf.WriteString("</struct>")
}

// isXMLSafe reports whether every rune of s is allowed in XML 1.0.
func isXMLSafe(s string) bool {
	for _, r := range s {
		switch {
		case r == utf8.RuneError:
			return false
		case r == 0x09 || r == 0x0A || r == 0x0D:
		case r >= 0x20 && r <= 0xD7FF:
		case r >= 0xE000 && r <= 0xFFFD:
		case r >= 0x10000 && r <= 0x10FFFF:
		default:
			return false
		}
	}

	return true
}
